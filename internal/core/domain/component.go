package domain

import "fmt"

type EntityCategory string

const (
	EntityCategoryNone       EntityCategory = ""
	EntityCategoryConfig     EntityCategory = "config"
	EntityCategoryDiagnostic EntityCategory = "diagnostic"
)

const (
	SENSOR_ID_BRIDGE_STATE    = "bridge"
	SENSOR_KEY_CONNECTIVITY   = "connectivity"
	STATE_CLASS_MEASUREMENT   = "measurement"
	DEVICE_CLASS_BATTERY      = "battery"
	DEVICE_CLASS_CONNECTIVITY = "connectivity"
	UNIT_PERCENTAGE           = "%"
	SENSOR_TYPE_SENSOR        = "sensor"
	SENSOR_TYPE_BINARY        = "binary_sensor"
	MANUFACTURER_ROTH         = "Roth"
	MODEL_MODULE              = "module"
	MODEL_ZONE                = "zone"
	TRANSLATION_KEY_BATTERY   = "battery"
	DESCRIPTION_KEY_BATTERY   = "battery_percent"
)

type Device struct {
	Id            string
	Name          string
	Version       string
	Model         string
	Manufacturer  string
	ViaDevice     string
	SuggestedArea string
}

// EntityDescription is the static metadata of a sensor entity.
type EntityDescription struct {
	Key                     string
	Name                    string
	TranslationKey          string
	EntityCategory          EntityCategory
	NativeUnitOfMeasurement string
	DeviceClass             string
	StateClass              string
	Icon                    string
	Decimals                uint
	EnabledByDefault        *bool
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total, total_increasing
	DeviceClass       string // battery, connectivity
	EntityCategory    EntityCategory
	EnabledByDefault  *bool
	Icon              string
	HasAvailability   bool
}

func ZoneDeviceId(zoneId int) string {
	return fmt.Sprintf("touchlinesl_zone_%d", zoneId)
}

func ModuleDeviceId(moduleId string) string {
	return fmt.Sprintf("touchlinesl_module_%s", moduleId)
}
