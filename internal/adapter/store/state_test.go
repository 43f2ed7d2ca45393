package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {

	assert := assert.New(t)

	store := NewSnapshotStore(filepath.Join(t.TempDir(), "state", "snapshots.yaml"))

	other := touchlinesl.NewSnapshot(touchlinesl.Module{ID: "9"}, touchlinesl.Zone{ID: 4, Name: "Attic"})
	require.NoError(t, store.Save([]*touchlinesl.Snapshot{touchlinesl.CreateTestSnapshot(), other}))

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(touchlinesl.TestModuleID, snapshots[0].Module.ID)
	assert.Equal(87, *snapshots[0].Zone(1).BatteryLevel)
	assert.Nil(snapshots[0].Zone(2).BatteryLevel, "missing battery level survives")
	assert.Equal("Attic", snapshots[1].Zone(4).Name)
}

func TestLoadMissingFile(t *testing.T) {

	store := NewSnapshotStore(filepath.Join(t.TempDir(), "none.yaml"))
	snapshots, err := store.Load()
	assert.NoError(t, err)
	assert.Empty(t, snapshots)
	assert.NoError(t, store.Clear(), "clear without file")
}

func TestLoadUnsupportedVersion(t *testing.T) {

	path := filepath.Join(t.TempDir(), "snapshots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 7\nmodules: []\n"), 0644))

	_, err := NewSnapshotStore(path).Load()
	assert.Error(t, err)
}

func TestClear(t *testing.T) {

	store := NewSnapshotStore(filepath.Join(t.TempDir(), "snapshots.yaml"))
	require.NoError(t, store.Save([]*touchlinesl.Snapshot{touchlinesl.CreateTestSnapshot()}))
	require.NoError(t, store.Clear())

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}
