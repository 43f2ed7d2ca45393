package util

import (
	"github.com/berfenger/touchlinesl2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "touchlinesl",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		Snapshot: config.SnapshotConfig{
			Encoding:            "json",
			StaleAfterMillis:    120000,
			CheckIntervalMillis: 10000,
		},
		Platform: config.PlatformConfig{
			EntryId:          "touchline_sl",
			SetupDelayMillis: 200,
		},
		Port: 8080,
	}
}
