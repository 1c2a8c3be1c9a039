// Package snapshot provides point-in-time copies of collection trees, used
// to roll a collection back to a known-good state after a failed import.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/skillmeat/skillmeat-cli/util/common/errors"
	"github.com/skillmeat/skillmeat-cli/util/common/fileutil"
)

const metaFileName = "snapshot.yaml"

// DefaultKeep is how many auto-snapshots are retained per collection.
const DefaultKeep = 10

// Snapshot describes one stored copy of a collection tree.
type Snapshot struct {
	ID         string    `yaml:"id"`
	Collection string    `yaml:"collection"`
	Message    string    `yaml:"message,omitempty"`
	CreatedAt  time.Time `yaml:"created_at"`

	// Path is the snapshot's storage directory. Set on load/create,
	// not serialized.
	Path string `yaml:"-"`
}

// Manager stores snapshots under a root directory, one subdirectory per
// collection, one per snapshot id beneath that.
type Manager struct {
	root string
	keep int
}

// NewManager creates a snapshot manager rooted at the given directory.
// keep bounds how many snapshots are retained per collection; zero or
// negative means DefaultKeep.
func NewManager(root string, keep int) *Manager {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Manager{root: root, keep: keep}
}

func (m *Manager) collectionDir(collection string) string {
	return filepath.Join(m.root, collection)
}

// AutoSnapshot copies the collection tree at collectionPath into a new
// snapshot and prunes old ones past the retention limit.
func (m *Manager) AutoSnapshot(collection, collectionPath, message string) (*Snapshot, error) {
	if !fileutil.IsDir(collectionPath) {
		return nil, errors.NewSnapshotError("create", collection,
			fmt.Errorf("collection path %s is not a directory", collectionPath))
	}

	s := &Snapshot{
		ID:         uuid.New().String(),
		Collection: collection,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	s.Path = filepath.Join(m.collectionDir(collection), s.ID)

	if err := fileutil.CopyDir(collectionPath, filepath.Join(s.Path, "tree")); err != nil {
		os.RemoveAll(s.Path)
		return nil, errors.NewSnapshotError("create", collection, err)
	}

	meta, err := yaml.Marshal(s)
	if err != nil {
		os.RemoveAll(s.Path)
		return nil, errors.NewSnapshotError("create", collection, err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(s.Path, metaFileName), meta); err != nil {
		os.RemoveAll(s.Path)
		return nil, errors.NewSnapshotError("create", collection, err)
	}

	log.Debug().
		Str("collection", collection).
		Str("snapshot_id", s.ID).
		Str("message", message).
		Msg("Created snapshot")

	if err := m.prune(collection); err != nil {
		// Retention is housekeeping; a failed prune never fails the snapshot.
		log.Warn().Err(err).Str("collection", collection).Msg("Snapshot prune failed")
	}

	return s, nil
}

// Restore replaces the tree at collectionPath with the snapshot's copy.
func (m *Manager) Restore(s *Snapshot, collectionPath string) error {
	tree := filepath.Join(s.Path, "tree")
	if !fileutil.IsDir(tree) {
		return errors.NewSnapshotError("restore", s.Collection,
			fmt.Errorf("snapshot %s has no stored tree", s.ID))
	}

	if err := fileutil.ResetDir(collectionPath); err != nil {
		return errors.NewSnapshotError("restore", s.Collection, err)
	}
	if err := fileutil.CopyDir(tree, collectionPath); err != nil {
		return errors.NewSnapshotError("restore", s.Collection, err)
	}

	log.Info().
		Str("collection", s.Collection).
		Str("snapshot_id", s.ID).
		Msg("Restored collection from snapshot")
	return nil
}

// Get loads a single snapshot by collection and id.
func (m *Manager) Get(collection, id string) (*Snapshot, error) {
	path := filepath.Join(m.collectionDir(collection), id)
	return m.load(path)
}

// List returns all snapshots for a collection, newest first.
func (m *Manager) List(collection string) ([]*Snapshot, error) {
	dir := m.collectionDir(collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewSnapshotError("list", collection, err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		s, err := m.load(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("snapshot_dir", entry.Name()).Msg("Skipping unreadable snapshot")
			continue
		}
		snaps = append(snaps, s)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

func (m *Manager) load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(path, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot metadata: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot metadata: %w", err)
	}
	s.Path = path
	return &s, nil
}

// prune removes the oldest snapshots beyond the retention limit.
func (m *Manager) prune(collection string) error {
	snaps, err := m.List(collection)
	if err != nil {
		return err
	}
	for _, s := range snaps[min(m.keep, len(snaps)):] {
		if err := os.RemoveAll(s.Path); err != nil {
			return err
		}
		log.Debug().Str("snapshot_id", s.ID).Msg("Pruned old snapshot")
	}
	return nil
}
