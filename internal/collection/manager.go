package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
	"github.com/skillmeat/skillmeat-cli/util/common/errors"
	"github.com/skillmeat/skillmeat-cli/util/common/fileutil"
)

// LockfileName is the per-collection manifest recording tracked artifacts.
const LockfileName = "collection.yaml"

// Manager loads and persists collections under a single root directory,
// one subdirectory per collection.
type Manager struct {
	root string
}

// NewManager creates a manager rooted at the given directory.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the directory holding all collections.
func (m *Manager) Root() string { return m.root }

// Path returns the root directory of a named collection.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.root, name)
}

// Init creates an empty collection. It fails if one already exists.
func (m *Manager) Init(name string) (*Collection, error) {
	dir := m.Path(name)
	if fileutil.Exists(filepath.Join(dir, LockfileName)) {
		return nil, fmt.Errorf("collection %q already exists", name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewFileError(dir, "create", err)
	}

	c := &Collection{Name: name, Path: dir}
	if err := m.Save(c); err != nil {
		return nil, err
	}
	log.Debug().Str("collection", name).Str("path", dir).Msg("Initialised collection")
	return c, nil
}

// Load reads a collection's lockfile from disk.
func (m *Manager) Load(name string) (*Collection, error) {
	dir := m.Path(name)
	lockPath := filepath.Join(dir, LockfileName)

	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("collection %q not found (run 'sm collection init %s' first): %w",
				name, name, errors.ErrNotFound)
		}
		return nil, errors.NewFileError(lockPath, "read", err)
	}

	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing lockfile for collection %q: %w", name, err)
	}
	if c.Name == "" {
		c.Name = name
	}
	c.Path = dir

	for i := range c.Artifacts {
		if !c.Artifacts[i].Type.Valid() {
			return nil, fmt.Errorf("lockfile for collection %q has invalid artifact type %q",
				name, c.Artifacts[i].Type)
		}
	}

	return &c, nil
}

// Save persists the collection lockfile atomically. Artifact files are
// written by their own operations; Save only records membership.
func (m *Manager) Save(c *Collection) error {
	c.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding lockfile for collection %q: %w", c.Name, err)
	}

	lockPath := filepath.Join(m.Path(c.Name), LockfileName)
	if err := fileutil.WriteFileAtomic(lockPath, data); err != nil {
		return err
	}

	log.Debug().Str("collection", c.Name).Int("artifacts", c.Count()).Msg("Saved collection lockfile")
	return nil
}

// List returns the names of every collection under the root.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewFileError(m.root, "read_dir", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if fileutil.Exists(filepath.Join(m.root, entry.Name(), LockfileName)) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ArtifactPath returns where an artifact's content lives inside a
// collection: skills are directories, commands and agents single files.
func (m *Manager) ArtifactPath(c *Collection, typ artifact.Type, name string) string {
	switch typ {
	case artifact.TypeSkill:
		return filepath.Join(c.Path, "skills", name)
	case artifact.TypeCommand:
		return filepath.Join(c.Path, "commands", name+".md")
	case artifact.TypeAgent:
		return filepath.Join(c.Path, "agents", name+".md")
	}
	return filepath.Join(c.Path, string(typ), name)
}

// RemoveArtifact deletes an artifact's files and drops it from the
// collection's in-memory set. The lockfile is not persisted here; callers
// decide when to Save.
func (m *Manager) RemoveArtifact(c *Collection, name string, typ artifact.Type) error {
	if !c.Exists(name, typ) {
		return fmt.Errorf("artifact %s not in collection %q: %w",
			artifact.Key(name, typ), c.Name, errors.ErrNotFound)
	}

	path := m.ArtifactPath(c, typ, name)
	if err := os.RemoveAll(path); err != nil {
		return errors.NewArtifactError("remove", name, string(typ), err)
	}

	c.Remove(name, typ)
	log.Debug().Str("collection", c.Name).Str("artifact", artifact.Key(name, typ)).Msg("Removed artifact")
	return nil
}
