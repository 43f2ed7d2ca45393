package touchlinesl

import "sort"

// Module is a Touchline SL controller module as reported by the poller.
type Module struct {
	ID      string `json:"id" yaml:"id" cbor:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" cbor:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty" cbor:"version,omitempty"`
}

// Zone is the state of a single thermostat zone. Nil readings were not reported.
type Zone struct {
	ID           int    `json:"id" yaml:"id" cbor:"id"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty" cbor:"name,omitempty"`
	BatteryLevel *int   `json:"battery_level,omitempty" yaml:"battery_level,omitempty" cbor:"battery_level,omitempty"`
}

// Snapshot is the latest state of a module and its zones, keyed by zone id.
type Snapshot struct {
	Module Module
	Zones  map[int]*Zone
}

// SnapshotDocument is the serialized form of a Snapshot with zones as a list.
type SnapshotDocument struct {
	Module Module `json:"module" yaml:"module" cbor:"module"`
	Zones  []Zone `json:"zones" yaml:"zones" cbor:"zones"`
}

func NewSnapshot(module Module, zones ...Zone) *Snapshot {
	s := &Snapshot{
		Module: module,
		Zones:  make(map[int]*Zone, len(zones)),
	}
	for i := range zones {
		zone := zones[i]
		s.Zones[zone.ID] = &zone
	}
	return s
}

// ZoneIDs returns the zone ids in ascending order.
func (s *Snapshot) ZoneIDs() []int {
	if s == nil {
		return nil
	}
	ids := make([]int, 0, len(s.Zones))
	for id := range s.Zones {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Snapshot) Zone(id int) *Zone {
	if s == nil || s.Zones == nil {
		return nil
	}
	return s.Zones[id]
}

// SameZones reports whether both snapshots hold the same zone ids.
func (s *Snapshot) SameZones(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	if len(s.Zones) != len(other.Zones) {
		return false
	}
	for id := range s.Zones {
		if _, ok := other.Zones[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Snapshot) Document() SnapshotDocument {
	w := SnapshotDocument{
		Module: s.Module,
		Zones:  make([]Zone, 0, len(s.Zones)),
	}
	for _, id := range s.ZoneIDs() {
		if zone := s.Zones[id]; zone != nil {
			w.Zones = append(w.Zones, *zone)
		}
	}
	return w
}

func (w SnapshotDocument) Snapshot() *Snapshot {
	return NewSnapshot(w.Module, w.Zones...)
}

func IntPtr(value int) *int {
	return &value
}
