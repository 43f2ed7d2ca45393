package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/touchlinesl2mqtt/internal/config"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	pahomqtt.Message
	topic   string
	payload []byte
}

func (m testMessage) Topic() string   { return m.topic }
func (m testMessage) Payload() []byte { return m.payload }

func testClient() *MQTTClient {
	cfg := config.Config{
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "loremtopic",
			HADiscoveryTopic: "homeassistant",
		},
	}
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestSnapshotTopicParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/module/abc-123/snapshot"
	r := snapshotExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal("abc-123", matches[0][1], "module extract")
}

func TestSnapshotTopicParseFail(t *testing.T) {

	assert := assert.New(t)

	r := snapshotExtractor("loremTopic")
	assert.Len(r.FindAllStringSubmatch("loremTopic/module/abc/state", 1), 0, "no matches")
	assert.Len(r.FindAllStringSubmatch("other/loremTopic/module/abc/snapshot", 1), 0, "anchored")
}

func TestParseSnapshot(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	s, err := c.ParseSnapshot(testMessage{topic: c.SnapshotTopic("m1"), payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal("m1", s.ModuleId)
	assert.Equal([]byte(`{}`), s.Payload)

	_, err = c.ParseSnapshot(testMessage{topic: c.SnapshotTopic("m1")})
	assert.Error(err, "empty payload")

	_, err = c.ParseSnapshot(testMessage{topic: c.HAStatusTopic(), payload: []byte("online")})
	assert.Error(err, "status topic")
}

func TestParseHAStatus(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	online, err := c.ParseHAStatus(testMessage{topic: "homeassistant/status", payload: []byte("online")})
	assert.NoError(err)
	assert.True(online)

	online, err = c.ParseHAStatus(testMessage{topic: "homeassistant/status", payload: []byte("offline")})
	assert.NoError(err)
	assert.False(online)

	_, err = c.ParseHAStatus(testMessage{topic: "loremtopic/module/m1/snapshot"})
	assert.Error(err)
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	assert.Equal("loremtopic/bridge/state", c.BridgeStateTopic())
	assert.Equal("loremtopic/sensor/s1/state", c.SensorStateTopic("s1"))
	assert.Equal("loremtopic/sensor/s1/availability", c.SensorAvailabilityTopic("s1"))
	assert.Equal("loremtopic/module/+/snapshot", c.snapshotFilter())
	assert.Equal("homeassistant/status", c.HAStatusTopic())
}

func TestSensorDiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	sensor := domain.GenericSensor{
		Device: domain.Device{
			Id:            "touchlinesl_zone_1",
			Name:          "Living room",
			Manufacturer:  "Roth",
			Model:         "zone",
			ViaDevice:     "touchlinesl_module_1234",
			SuggestedArea: "Living room",
		},
		Id:                "module-1234-zone-1-battery_percent",
		SensorType:        domain.SENSOR_TYPE_SENSOR,
		Name:              "Battery",
		UniqueId:          "module-1234-zone-1-battery_percent",
		UnitOfMeasurement: "%",
		StateClass:        "measurement",
		DeviceClass:       "battery",
		EntityCategory:    domain.EntityCategoryDiagnostic,
		HasAvailability:   true,
	}

	assert.Equal("homeassistant/sensor/touchlinesl_zone_1/module-1234-zone-1-battery_percent/config", c.HADiscoverySensorTopic(sensor))

	msg := GenericSensorToHADiscoveryMessage(c, sensor)
	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal("loremtopic/sensor/module-1234-zone-1-battery_percent/state", decoded["state_topic"])
	assert.Equal("diagnostic", decoded["entity_category"])
	assert.Equal("battery", decoded["device_class"])
	assert.Equal("all", decoded["availability_mode"])
	assert.Len(decoded["availability"], 2)
	assert.NotContains(decoded, "availability_topic")
	dev := decoded["device"].(map[string]any)
	assert.Equal("Living room", dev["suggested_area"])
	assert.Equal("touchlinesl_module_1234", dev["via_device"])
}

func TestBridgeDiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	msg := GenericSensorToHADiscoveryMessage(c, domain.GenericSensor{
		Device:     domain.Device{Id: "bridge"},
		Id:         domain.SENSOR_ID_BRIDGE_STATE,
		SensorType: domain.SENSOR_TYPE_BINARY,
	})
	assert.Equal("loremtopic/bridge/state", msg.StateTopic)
	assert.Equal("loremtopic/bridge/state", msg.AvTopic)
	assert.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Equal(MQTT_PAYLOAD_OFFLINE, msg.PayloadOff)
}
