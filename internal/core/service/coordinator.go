package service

import (
	"sort"
	"sync"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
)

// ModuleCoordinator caches the latest snapshot of one module.
type ModuleCoordinator struct {
	mu          sync.RWMutex
	moduleId    string
	data        *touchlinesl.Snapshot
	lastSuccess bool
	lastUpdated time.Time
}

func NewModuleCoordinator(moduleId string) *ModuleCoordinator {
	return &ModuleCoordinator{moduleId: moduleId}
}

func (c *ModuleCoordinator) ModuleId() string {
	return c.moduleId
}

func (c *ModuleCoordinator) Data() *touchlinesl.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

func (c *ModuleCoordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

func (c *ModuleCoordinator) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}

// Update stores a fresh snapshot and reports whether the zone set changed.
func (c *ModuleCoordinator) Update(snapshot *touchlinesl.Snapshot, at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := !c.data.SameZones(snapshot)
	c.data = snapshot
	c.lastSuccess = true
	c.lastUpdated = at
	return changed
}

// Restore seeds the cache with stored data. The coordinator stays unavailable until the next Update.
func (c *ModuleCoordinator) Restore(snapshot *touchlinesl.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = snapshot
	c.lastSuccess = false
}

// MarkFailed flags the cached data as stale. It returns false if it was already failed.
func (c *ModuleCoordinator) MarkFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.lastSuccess
	c.lastSuccess = false
	return was
}

type CoordinatorRegistry struct {
	mu           sync.RWMutex
	coordinators map[string]*ModuleCoordinator
}

func NewCoordinatorRegistry() *CoordinatorRegistry {
	return &CoordinatorRegistry{
		coordinators: make(map[string]*ModuleCoordinator),
	}
}

// GetOrCreate returns the coordinator of a module, creating it if needed. created is true for new ones.
func (r *CoordinatorRegistry) GetOrCreate(moduleId string) (coordinator *ModuleCoordinator, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.coordinators[moduleId]; ok {
		return c, false
	}
	c := NewModuleCoordinator(moduleId)
	r.coordinators[moduleId] = c
	return c, true
}

func (r *CoordinatorRegistry) Get(moduleId string) *ModuleCoordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coordinators[moduleId]
}

// Coordinators returns all coordinators sorted by module id.
func (r *CoordinatorRegistry) Coordinators() []*ModuleCoordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ModuleCoordinator, 0, len(r.coordinators))
	for _, c := range r.coordinators {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].moduleId < list[j].moduleId
	})
	return list
}

func (r *CoordinatorRegistry) ConfigEntry(entryId string) port.ConfigEntry {
	coordinators := r.Coordinators()
	entry := port.ConfigEntry{
		EntryId:     entryId,
		RuntimeData: make([]port.Coordinator, 0, len(coordinators)),
	}
	for _, c := range coordinators {
		entry.RuntimeData = append(entry.RuntimeData, c)
	}
	return entry
}

// Snapshots returns the cached data of every coordinator holding any.
func (r *CoordinatorRegistry) Snapshots() []*touchlinesl.Snapshot {
	var snapshots []*touchlinesl.Snapshot
	for _, c := range r.Coordinators() {
		if data := c.Data(); data != nil {
			snapshots = append(snapshots, data)
		}
	}
	return snapshots
}
