package service

import (
	"sync"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
)

// EntityRegistry holds the entities registered by the last setup of the entry.
type EntityRegistry struct {
	mu       sync.RWMutex
	entities []port.SensorEntity
}

func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{}
}

func (r *EntityRegistry) Replace(entities []port.SensorEntity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append([]port.SensorEntity(nil), entities...)
}

func (r *EntityRegistry) Entities() []port.SensorEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]port.SensorEntity(nil), r.entities...)
}

func (r *EntityRegistry) ByModule(moduleId string) []port.SensorEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entities []port.SensorEntity
	for _, e := range r.entities {
		if e.ModuleId() == moduleId {
			entities = append(entities, e)
		}
	}
	return entities
}

func (r *EntityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
