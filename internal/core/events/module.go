package events

import (
	"fmt"

	. "github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
)

// ModuleDevice is the controller module the zone devices are attached to.
func ModuleDevice(module touchlinesl.Module, bridgeDevice Device) Device {
	name := module.Name
	if name == "" {
		name = fmt.Sprintf("Touchline SL %s", module.ID)
	}
	return Device{
		Id:           ModuleDeviceId(module.ID),
		Name:         name,
		Manufacturer: MANUFACTURER_ROTH,
		Model:        MODEL_MODULE,
		Version:      module.Version,
		ViaDevice:    bridgeDevice.Id,
	}
}

func ModuleConnectivitySensorId(moduleId string) string {
	return fmt.Sprintf("module-%s-%s", moduleId, SENSOR_KEY_CONNECTIVITY)
}

// ModuleSensors announces the module device through its connectivity sensor.
func ModuleSensors(moduleDevice Device, moduleId string) []GenericSensor {
	id := ModuleConnectivitySensorId(moduleId)
	return []GenericSensor{
		{
			Device:         moduleDevice,
			Id:             id,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Connectivity",
			DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
			EntityCategory: EntityCategoryDiagnostic,
			UniqueId:       id,
		},
	}
}

// ModuleStateUpdateEvent reports whether the module sent a fresh snapshot.
func ModuleStateUpdateEvent(moduleId string, connected bool) SensorUpdateEvent {
	return BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: ModuleConnectivitySensorId(moduleId)},
		Value:                  connected,
	}
}
