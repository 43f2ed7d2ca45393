package mqtt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
	MQTT_PAYLOAD_UNKNOWN = "None"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(clientId())
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:         mqtt.NewClient(opts),
		cfg:            cfg.MQTT,
		snapshotRegexp: snapshotExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client         mqtt.Client
	cfg            config.MQTTConfig
	snapshotRegexp *regexp.Regexp
}

type ParsedSnapshot struct {
	ModuleId string
	Payload  []byte
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) discoveryTopic() string {
	if c.cfg.HADiscoveryTopic == "" {
		return "homeassistant"
	}
	return c.cfg.HADiscoveryTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) SensorAvailabilityTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/availability", c.baseTopic(), sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) SnapshotTopic(moduleId string) string {
	return fmt.Sprintf("%s/module/%s/snapshot", c.baseTopic(), moduleId)
}

func (c *MQTTClient) HAStatusTopic() string {
	return fmt.Sprintf("%s/status", c.discoveryTopic())
}

func (c *MQTTClient) ParseSnapshot(msg mqtt.Message) (*ParsedSnapshot, error) {
	matches := c.snapshotRegexp.FindAllStringSubmatch(msg.Topic(), 1)
	if len(matches) == 0 || len(matches[0]) != 2 {
		return nil, errors.New("invalid snapshot topic")
	}
	if len(msg.Payload()) == 0 {
		return nil, errors.New("empty snapshot")
	}
	return &ParsedSnapshot{
		ModuleId: matches[0][1],
		Payload:  msg.Payload(),
	}, nil
}

// ParseHAStatus reports whether Home Assistant announced itself online.
func (c *MQTTClient) ParseHAStatus(msg mqtt.Message) (bool, error) {
	if msg.Topic() != c.HAStatusTopic() {
		return false, errors.New("invalid status topic")
	}
	return strings.TrimSpace(string(msg.Payload())) == MQTT_PAYLOAD_ONLINE, nil
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

// SubscribeToFeeds subscribes to the module snapshot feed and to the Home Assistant status topic.
func (c *MQTTClient) SubscribeToFeeds(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	filters := map[string]byte{
		c.snapshotFilter(): 1,
		c.HAStatusTopic():  1,
	}
	token := c.client.SubscribeMultiple(filters, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	if c.client.IsConnected() {
		c.client.Disconnect(uint(timeout.Milliseconds()))
	}
}

func (c *MQTTClient) snapshotFilter() string {
	return fmt.Sprintf("%s/module/+/snapshot", c.baseTopic())
}

func snapshotExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/module/([a-zA-Z0-9_-]+)/snapshot$", regexp.QuoteMeta(baseTopic)))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}

func clientId() string {
	return fmt.Sprintf("touchlinesl_%s", uuid.NewString()[:8])
}
