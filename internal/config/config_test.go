package config

import (
	"testing"

	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
	"github.com/stretchr/testify/assert"
)

func TestCheckMQTTTopic(t *testing.T) {

	assert := assert.New(t)

	topic, err := CheckMQTTTopic("TouchlineSL")
	assert.NoError(err)
	assert.Equal("touchlinesl", topic, "lower case")

	_, err = CheckMQTTTopic("touchline/sl")
	assert.Error(err, "slash")

	_, err = CheckMQTTTopic("")
	assert.Error(err, "empty")
}

func TestCheckEncoding(t *testing.T) {

	assert := assert.New(t)

	enc, err := CheckEncoding("JSON")
	assert.NoError(err)
	assert.Equal(touchlinesl.EncodingJSON, enc)

	_, err = CheckEncoding("protobuf")
	assert.ErrorIs(err, touchlinesl.ErrUnknownEncoding)
}

func TestValidate(t *testing.T) {

	assert := assert.New(t)

	cfg := Config{
		Snapshot: SnapshotConfig{
			StaleAfterMillis:    120000,
			CheckIntervalMillis: 10000,
		},
		Platform: PlatformConfig{EntryId: "touchline_sl"},
	}
	assert.NoError(cfg.Validate())

	cfg.Snapshot.CheckIntervalMillis = 500
	assert.Error(cfg.Validate(), "check interval too short")

	cfg.Snapshot.CheckIntervalMillis = 10000
	cfg.Snapshot.StaleAfterMillis = 5000
	assert.Error(cfg.Validate(), "stale before check")

	cfg.Snapshot.StaleAfterMillis = 120000
	cfg.Platform.EntryId = ""
	assert.Error(cfg.Validate(), "entry id")
}
