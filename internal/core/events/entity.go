package events

import (
	"fmt"
	"math"

	. "github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
)

// EntityToGenericSensor maps a sensor entity to its discovery component.
func EntityToGenericSensor(entity port.SensorEntity) GenericSensor {
	d := entity.Description()
	return GenericSensor{
		Device:            entity.DeviceInfo(),
		Id:                entity.UniqueID(),
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              entity.Name(),
		UniqueId:          entity.UniqueID(),
		UnitOfMeasurement: d.NativeUnitOfMeasurement,
		StateClass:        d.StateClass,
		DeviceClass:       d.DeviceClass,
		EntityCategory:    d.EntityCategory,
		EnabledByDefault:  d.EnabledByDefault,
		Icon:              d.Icon,
		HasAvailability:   true,
	}
}

// EntitiesToGenericSensors maps entities to discovery components. Only the first component of a device
// carries the full device block.
func EntitiesToGenericSensors(entities []port.SensorEntity) []GenericSensor {
	sensors := make([]GenericSensor, 0, len(entities))
	announced := make(map[string]bool)
	for _, e := range entities {
		sensor := EntityToGenericSensor(e)
		if announced[sensor.Device.Id] {
			sensor.Device = IdDevice(sensor.Device)
		}
		announced[sensor.Device.Id] = true
		sensors = append(sensors, sensor)
	}
	return sensors
}

// EntityToUpdateEvents returns the state event followed by the availability event of an entity.
func EntityToUpdateEvents(entity port.SensorEntity) []SensorUpdateEvent {
	mixIn := SensorUpdateEventMixIn{
		Id: entity.UniqueID(),
	}
	return []SensorUpdateEvent{
		valueToUpdateEvent(mixIn, entity.NativeValue(), entity.Description().Decimals),
		AvailabilityUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  entity.Available(),
		},
	}
}

func EntitiesToUpdateEvents(entities []port.SensorEntity) []SensorUpdateEvent {
	var events []SensorUpdateEvent
	for _, e := range entities {
		events = append(events, EntityToUpdateEvents(e)...)
	}
	return events
}

func valueToUpdateEvent(mixIn SensorUpdateEventMixIn, value any, decimals uint) SensorUpdateEvent {
	var f float64
	switch v := value.(type) {
	case nil:
		return UnknownSensorUpdateEvent{SensorUpdateEventMixIn: mixIn}
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case string:
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: v}
	default:
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: fmt.Sprintf("%v", v)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return UnknownSensorUpdateEvent{SensorUpdateEventMixIn: mixIn}
	}
	return FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: mixIn,
		Value:                  f,
		Decimals:               decimals,
	}
}
