// Package collection manages the on-disk sets of artifacts a user has
// installed. A collection is a directory tree (skills/, commands/, agents/)
// plus a collection.yaml lockfile recording every tracked artifact.
package collection

import (
	"time"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

// Collection is the mutable set of artifacts identified by (name, type).
// It is the single source of truth for membership while loaded: Add and
// Remove keep the in-memory state consistent with what the manager does
// on disk, so callers never need to reload mid-operation.
type Collection struct {
	Name      string              `yaml:"name"`
	UpdatedAt time.Time           `yaml:"updated_at,omitempty"`
	Artifacts []artifact.Artifact `yaml:"artifacts"`

	// Path is the collection's root directory. Set by the manager on
	// load, not serialized.
	Path string `yaml:"-"`
}

// Find returns the artifact with the given identity, or nil.
func (c *Collection) Find(name string, typ artifact.Type) *artifact.Artifact {
	for i := range c.Artifacts {
		if c.Artifacts[i].Name == name && c.Artifacts[i].Type == typ {
			return &c.Artifacts[i]
		}
	}
	return nil
}

// Exists reports whether an artifact with the given identity is tracked.
func (c *Collection) Exists(name string, typ artifact.Type) bool {
	return c.Find(name, typ) != nil
}

// Add inserts an artifact, replacing any existing entry with the same
// (name, type) identity.
func (c *Collection) Add(a artifact.Artifact) {
	for i := range c.Artifacts {
		if c.Artifacts[i].Name == a.Name && c.Artifacts[i].Type == a.Type {
			c.Artifacts[i] = a
			return
		}
	}
	c.Artifacts = append(c.Artifacts, a)
}

// Remove drops the artifact with the given identity from the in-memory
// set. Returns false when no such artifact was tracked.
func (c *Collection) Remove(name string, typ artifact.Type) bool {
	for i := range c.Artifacts {
		if c.Artifacts[i].Name == name && c.Artifacts[i].Type == typ {
			c.Artifacts = append(c.Artifacts[:i], c.Artifacts[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of tracked artifacts.
func (c *Collection) Count() int {
	return len(c.Artifacts)
}
