package sensor

import (
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
)

// SensorEntityDescription pairs entity metadata with the function that reads its value from a zone.
// ValueFn must return nil for missing data.
type SensorEntityDescription struct {
	domain.EntityDescription
	ValueFn func(zone *touchlinesl.Zone) any
}

var MeasurementSensorTypes = []SensorEntityDescription{
	{
		EntityDescription: domain.EntityDescription{
			Key:                     domain.DESCRIPTION_KEY_BATTERY,
			Name:                    "Battery",
			TranslationKey:          domain.TRANSLATION_KEY_BATTERY,
			EntityCategory:          domain.EntityCategoryDiagnostic,
			NativeUnitOfMeasurement: domain.UNIT_PERCENTAGE,
			DeviceClass:             domain.DEVICE_CLASS_BATTERY,
			StateClass:              domain.STATE_CLASS_MEASUREMENT,
		},
		ValueFn: batteryLevel,
	},
}

func batteryLevel(zone *touchlinesl.Zone) any {
	if zone == nil || zone.BatteryLevel == nil {
		return nil
	}
	return *zone.BatteryLevel
}
