// Package artifact defines the named, typed units of content tracked by a
// collection: skills (directories), commands and agents (single markdown
// files).
package artifact

import (
	"fmt"
	"time"
)

// Type identifies the kind of an artifact. The set is closed.
type Type string

const (
	TypeSkill   Type = "skill"
	TypeCommand Type = "command"
	TypeAgent   Type = "agent"
)

// Types lists every valid artifact type in a stable order.
var Types = []Type{TypeSkill, TypeCommand, TypeAgent}

// ParseType converts a string into a Type, failing on anything outside
// the closed set.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeSkill, TypeCommand, TypeAgent:
		return Type(s), nil
	}
	return "", fmt.Errorf("invalid artifact type %q (must be one of skill, command, agent)", s)
}

// Valid reports whether t is a member of the closed type set.
func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

func (t Type) String() string { return string(t) }

// Artifact is one tracked unit of content inside a collection.
// Identity within a collection is the (Name, Type) pair.
type Artifact struct {
	Name        string    `yaml:"name"`
	Type        Type      `yaml:"type"`
	Version     string    `yaml:"version,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Origin      string    `yaml:"origin,omitempty"`
	Upstream    string    `yaml:"upstream,omitempty"`
	Tags        []string  `yaml:"tags,omitempty"`
	Hash        string    `yaml:"hash,omitempty"`
	AddedAt     time.Time `yaml:"added_at,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty"`
}

// Key returns the canonical identity key for an artifact.
func Key(name string, typ Type) string {
	return string(typ) + "/" + name
}

// Key returns the canonical identity key of this artifact.
func (a *Artifact) Key() string {
	return Key(a.Name, a.Type)
}
