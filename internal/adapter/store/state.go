package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"

	"gopkg.in/yaml.v3"
)

const StateVersion = 1

// State is the content of the snapshot state file.
type State struct {
	Version int                            `yaml:"version"`
	SavedAt time.Time                      `yaml:"saved_at"`
	Modules []touchlinesl.SnapshotDocument `yaml:"modules"`
}

// SnapshotStore persists the latest snapshot of every module to a YAML file.
type SnapshotStore struct {
	mu   sync.Mutex
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Path() string {
	return s.path
}

// Save writes all snapshots through a temporary file and an atomic rename.
func (s *SnapshotStore) Save(snapshots []*touchlinesl.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state := State{
		Version: StateVersion,
		SavedAt: time.Now().UTC(),
	}
	for _, snapshot := range snapshots {
		state.Modules = append(state.Modules, snapshot.Document())
	}

	data, err := yaml.Marshal(&state)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the stored snapshots. A missing file is an empty state.
func (s *SnapshotStore) Load() ([]*touchlinesl.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Version != StateVersion {
		return nil, fmt.Errorf("unsupported state file version %d", state.Version)
	}

	snapshots := make([]*touchlinesl.Snapshot, 0, len(state.Modules))
	for _, doc := range state.Modules {
		if doc.Module.ID == "" {
			continue
		}
		snapshots = append(snapshots, doc.Snapshot())
	}
	return snapshots, nil
}

func (s *SnapshotStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
