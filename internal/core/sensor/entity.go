package sensor

import (
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
)

// ZoneEntity is the base of every entity bound to a zone of a module.
type ZoneEntity struct {
	coordinator port.Coordinator
	zoneId      int
	moduleId    string
}

func NewZoneEntity(coordinator port.Coordinator, zoneId int) ZoneEntity {
	var moduleId string
	if data := coordinator.Data(); data != nil {
		moduleId = data.Module.ID
	}
	return ZoneEntity{
		coordinator: coordinator,
		zoneId:      zoneId,
		moduleId:    moduleId,
	}
}

func (e ZoneEntity) Coordinator() port.Coordinator {
	return e.coordinator
}

func (e ZoneEntity) ZoneId() int {
	return e.zoneId
}

func (e ZoneEntity) ModuleId() string {
	return e.moduleId
}

// Zone reads the zone from the latest snapshot. Nil once the zone is gone.
func (e ZoneEntity) Zone() *touchlinesl.Zone {
	return e.coordinator.Data().Zone(e.zoneId)
}

func (e ZoneEntity) Available() bool {
	return e.coordinator.LastUpdateSuccess() && e.Zone() != nil
}

func (e ZoneEntity) DeviceInfo() domain.Device {
	device := domain.Device{
		Id:           domain.ZoneDeviceId(e.zoneId),
		Manufacturer: domain.MANUFACTURER_ROTH,
		Model:        domain.MODEL_ZONE,
		ViaDevice:    domain.ModuleDeviceId(e.moduleId),
	}
	if zone := e.Zone(); zone != nil {
		device.Name = zone.Name
		device.SuggestedArea = zone.Name
	}
	return device
}
