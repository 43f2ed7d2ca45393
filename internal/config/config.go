package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Platform PlatformConfig `mapstructure:"platform"`
	Port     uint           `mapstructure:"port"`
	HttpLog  bool           `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

type SnapshotConfig struct {
	Encoding            string `mapstructure:"encoding"`
	StateFile           string `mapstructure:"state_file"`
	StaleAfterMillis    uint32 `mapstructure:"stale_after_millis"`
	CheckIntervalMillis uint32 `mapstructure:"check_interval_millis"`
}

type PlatformConfig struct {
	EntryId          string `mapstructure:"entry_id"`
	SetupDelayMillis uint32 `mapstructure:"setup_delay_millis"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

func CheckEncoding(encoding string) (touchlinesl.Encoding, error) {
	return touchlinesl.ParseEncoding(strings.ToLower(encoding))
}

// Validate checks bounds of the snapshot and platform settings.
func (cfg *Config) Validate() error {
	if cfg.Snapshot.CheckIntervalMillis < 1000 {
		return errors.New("config param snapshot.check_interval_millis should be >= 1000")
	}
	if cfg.Snapshot.StaleAfterMillis < cfg.Snapshot.CheckIntervalMillis {
		return fmt.Errorf("config param snapshot.stale_after_millis should be >= snapshot.check_interval_millis (%d)",
			cfg.Snapshot.CheckIntervalMillis)
	}
	if cfg.Platform.EntryId == "" {
		return errors.New("config param platform.entry_id must not be empty")
	}
	return nil
}
