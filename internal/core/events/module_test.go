package events

import (
	"testing"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleDevice(t *testing.T) {

	assert := assert.New(t)

	bridge := BridgeDevice("touchlinesl")
	device := ModuleDevice(touchlinesl.CreateTestSnapshot().Module, bridge)
	assert.Equal(domain.ModuleDeviceId(touchlinesl.TestModuleID), device.Id)
	assert.Equal("Ground floor", device.Name)
	assert.Equal("1.2.3", device.Version)
	assert.Equal(domain.MANUFACTURER_ROTH, device.Manufacturer)
	assert.Equal(domain.MODEL_MODULE, device.Model)
	assert.Equal(bridge.Id, device.ViaDevice)

	unnamed := ModuleDevice(touchlinesl.Module{ID: "77"}, bridge)
	assert.Equal("Touchline SL 77", unnamed.Name)
}

func TestModuleSensors(t *testing.T) {

	assert := assert.New(t)

	device := ModuleDevice(touchlinesl.Module{ID: "1234"}, BridgeDevice("touchlinesl"))
	sensors := ModuleSensors(device, "1234")
	require.Len(t, sensors, 1)
	assert.Equal("module-1234-connectivity", sensors[0].UniqueId)
	assert.Equal(domain.SENSOR_TYPE_BINARY, sensors[0].SensorType)
	assert.Equal(domain.DEVICE_CLASS_CONNECTIVITY, sensors[0].DeviceClass)
	assert.Equal(device, sensors[0].Device)

	ev, ok := ModuleStateUpdateEvent("1234", false).(domain.BinarySensorUpdateEvent)
	require.True(t, ok)
	assert.Equal("module-1234-connectivity", ev.SensorId())
	assert.False(ev.Value)
}
