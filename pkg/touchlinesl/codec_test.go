package touchlinesl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {

	assert := assert.New(t)

	payload := `{"module":{"id":"m1","name":"Main"},"zones":[{"id":3,"name":"Bath","battery_level":87},{"id":5,"name":"Hall"}]}`
	s, err := Decode(EncodingJSON, []byte(payload))
	require.NoError(t, err)

	assert.Equal("m1", s.Module.ID, "module id")
	assert.Equal([]int{3, 5}, s.ZoneIDs(), "zone ids")
	require.NotNil(t, s.Zone(3).BatteryLevel)
	assert.Equal(87, *s.Zone(3).BatteryLevel, "battery level")
	assert.Nil(s.Zone(5).BatteryLevel, "missing battery level")
	assert.Nil(s.Zone(7), "unknown zone")
}

func TestDecodeYAML(t *testing.T) {

	assert := assert.New(t)

	payload := `
module:
  id: m2
zones:
  - id: 1
    name: Office
    battery_level: 40
`
	s, err := Decode(EncodingYAML, []byte(payload))
	require.NoError(t, err)

	assert.Equal("m2", s.Module.ID, "module id")
	assert.Equal(40, *s.Zone(1).BatteryLevel, "battery level")
}

func TestEncodeDecodeCBOR(t *testing.T) {

	assert := assert.New(t)

	data, err := Encode(EncodingCBOR, CreateTestSnapshot())
	require.NoError(t, err)

	s, err := Decode(EncodingCBOR, data)
	require.NoError(t, err)

	assert.Equal(TestModuleID, s.Module.ID, "module id")
	assert.Equal("Living room", s.Zone(1).Name, "zone name")
	assert.Equal(87, *s.Zone(1).BatteryLevel, "battery level")
	assert.Nil(s.Zone(2).BatteryLevel, "missing battery level")
}

func TestDecodeDuplicatedZoneLastWins(t *testing.T) {

	payload := `{"module":{"id":"m1"},"zones":[{"id":1,"battery_level":10},{"id":1,"battery_level":20}]}`
	s, err := Decode(EncodingJSON, []byte(payload))
	require.NoError(t, err)

	assert.Len(t, s.Zones, 1)
	assert.Equal(t, 20, *s.Zone(1).BatteryLevel)
}

func TestDecodeErrors(t *testing.T) {

	assert := assert.New(t)

	_, err := Decode(EncodingJSON, []byte(`{"zones":[]}`))
	assert.True(errors.Is(err, ErrMissingModuleID), "missing module id")

	_, err = Decode(Encoding("xml"), []byte(`<x/>`))
	assert.True(errors.Is(err, ErrUnknownEncoding), "unknown encoding")

	_, err = Decode(EncodingJSON, []byte(`{`))
	assert.Error(err, "malformed payload")
}

func TestParseEncoding(t *testing.T) {

	assert := assert.New(t)

	enc, err := ParseEncoding("cbor")
	assert.NoError(err)
	assert.Equal(EncodingCBOR, enc)

	_, err = ParseEncoding("toml")
	assert.ErrorIs(err, ErrUnknownEncoding)
}

func TestSameZones(t *testing.T) {

	assert := assert.New(t)

	a := CreateTestSnapshot()
	b := CreateTestSnapshot()
	assert.True(a.SameZones(b), "same zone set")

	b.Zones[9] = &Zone{ID: 9}
	assert.False(a.SameZones(b), "zone added")

	var empty *Snapshot
	assert.False(a.SameZones(empty), "nil snapshot")
}
