package server

import (
	"strconv"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exposes zone battery levels and the state of the registered entities.
type MetricsCollector struct {
	coordinators *service.CoordinatorRegistry
	entities     *service.EntityRegistry

	battery   *prometheus.GaugeVec
	available *prometheus.GaugeVec
	count     prometheus.Gauge
}

func NewMetricsCollector(coordinators *service.CoordinatorRegistry, entities *service.EntityRegistry) *MetricsCollector {
	return &MetricsCollector{
		coordinators: coordinators,
		entities:     entities,
		battery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "touchlinesl_zone_battery_percent",
			Help: "Battery level per zone",
		}, []string{"module_id", "zone_id", "zone_name"}),
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "touchlinesl_entity_available",
			Help: "Entity availability (1=available, 0=unavailable)",
		}, []string{"unique_id"}),
		count: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "touchlinesl_entities",
			Help: "Number of registered entities",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.battery.Describe(ch)
	c.available.Describe(ch)
	c.count.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.battery.Reset()
	c.available.Reset()

	for _, coordinator := range c.coordinators.Coordinators() {
		if !coordinator.LastUpdateSuccess() {
			continue
		}
		data := coordinator.Data()
		for _, id := range data.ZoneIDs() {
			zone := data.Zone(id)
			if zone.BatteryLevel == nil {
				continue
			}
			c.battery.With(prometheus.Labels{
				"module_id": coordinator.ModuleId(),
				"zone_id":   strconv.Itoa(zone.ID),
				"zone_name": zone.Name,
			}).Set(float64(*zone.BatteryLevel))
		}
	}

	entities := c.entities.Entities()
	for _, e := range entities {
		c.available.WithLabelValues(e.UniqueID()).Set(boolToFloat(e.Available()))
	}
	c.count.Set(float64(len(entities)))

	c.battery.Collect(ch)
	c.available.Collect(ch)
	c.count.Collect(ch)
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
