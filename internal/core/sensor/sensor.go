package sensor

import (
	"fmt"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
)

type Sensor struct {
	ZoneEntity
	description SensorEntityDescription
	uniqueId    string
}

func NewSensor(coordinator port.Coordinator, zoneId int, description SensorEntityDescription) *Sensor {
	base := NewZoneEntity(coordinator, zoneId)
	return &Sensor{
		ZoneEntity:  base,
		description: description,
		uniqueId:    UniqueID(base.ModuleId(), zoneId, description.Key),
	}
}

func UniqueID(moduleId string, zoneId int, key string) string {
	return fmt.Sprintf("module-%s-zone-%d-%s", moduleId, zoneId, key)
}

func (s *Sensor) UniqueID() string {
	return s.uniqueId
}

func (s *Sensor) Name() string {
	return s.description.Name
}

func (s *Sensor) Description() domain.EntityDescription {
	return s.description.EntityDescription
}

// NativeValue is nil when the zone or its reading is missing.
func (s *Sensor) NativeValue() any {
	zone := s.Zone()
	if zone == nil {
		return nil
	}
	return s.description.ValueFn(zone)
}

// AsyncSetupEntry creates one sensor per description, coordinator and zone, and registers them all at once.
func AsyncSetupEntry(entry port.ConfigEntry, addEntities port.AddEntitiesCallback) {
	entities := []port.SensorEntity{}
	for _, description := range MeasurementSensorTypes {
		for _, coordinator := range entry.RuntimeData {
			for _, zoneId := range coordinator.Data().ZoneIDs() {
				entities = append(entities, NewSensor(coordinator, zoneId, description))
			}
		}
	}
	addEntities(entities)
}
