package service

import (
	"testing"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
	"github.com/stretchr/testify/assert"
)

func TestModuleCoordinatorUpdate(t *testing.T) {

	assert := assert.New(t)

	c := NewModuleCoordinator(touchlinesl.TestModuleID)
	assert.Nil(c.Data(), "no data before first update")
	assert.False(c.LastUpdateSuccess(), "not available before first update")

	now := time.Now()
	changed := c.Update(touchlinesl.CreateTestSnapshot(), now)
	assert.True(changed, "first snapshot changes the zone set")
	assert.True(c.LastUpdateSuccess())
	assert.Equal(now, c.LastUpdated())

	changed = c.Update(touchlinesl.CreateTestSnapshot(), now.Add(time.Second))
	assert.False(changed, "same zones")

	s := touchlinesl.CreateTestSnapshot()
	delete(s.Zones, 2)
	changed = c.Update(s, now.Add(2*time.Second))
	assert.True(changed, "zone removed")
}

func TestModuleCoordinatorFailAndRestore(t *testing.T) {

	assert := assert.New(t)

	c := NewModuleCoordinator(touchlinesl.TestModuleID)
	c.Restore(touchlinesl.CreateTestSnapshot())
	assert.NotNil(c.Data(), "restored data")
	assert.False(c.LastUpdateSuccess(), "restored data is not fresh")

	c.Update(touchlinesl.CreateTestSnapshot(), time.Now())
	assert.True(c.MarkFailed(), "first failure")
	assert.False(c.MarkFailed(), "already failed")
	assert.False(c.LastUpdateSuccess())
	assert.NotNil(c.Data(), "data is kept after failure")
}

func TestCoordinatorRegistry(t *testing.T) {

	assert := assert.New(t)

	r := NewCoordinatorRegistry()
	b, created := r.GetOrCreate("b")
	assert.True(created)
	_, created = r.GetOrCreate("a")
	assert.True(created)
	again, created := r.GetOrCreate("b")
	assert.False(created)
	assert.Same(b, again)

	list := r.Coordinators()
	assert.Len(list, 2)
	assert.Equal("a", list[0].ModuleId(), "sorted by module id")

	entry := r.ConfigEntry("entry")
	assert.Equal("entry", entry.EntryId)
	assert.Len(entry.RuntimeData, 2)

	assert.Empty(r.Snapshots(), "no data yet")
	b.Update(touchlinesl.CreateTestSnapshot(), time.Now())
	assert.Len(r.Snapshots(), 1)
	assert.Nil(r.Get("c"))
}
