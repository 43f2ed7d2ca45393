package port

import (
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
)

// Coordinator holds the latest snapshot of one module.
type Coordinator interface {
	Data() *touchlinesl.Snapshot
	LastUpdateSuccess() bool
}

// ConfigEntry is one integration entry with a coordinator per managed module.
type ConfigEntry struct {
	EntryId     string
	RuntimeData []Coordinator
}

type SensorEntity interface {
	UniqueID() string
	Name() string
	Description() domain.EntityDescription
	DeviceInfo() domain.Device
	ModuleId() string
	Available() bool
	NativeValue() any
}

type AddEntitiesCallback func(entities []SensorEntity)
