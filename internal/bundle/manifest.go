// Package bundle implements the bundle import engine: validation of
// untrusted ZIP archives, conflict detection against a collection,
// pluggable conflict-resolution strategies, and atomic import with
// snapshot-based rollback.
package bundle

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

// ManifestName is the required top-level manifest inside every bundle.
const ManifestName = "bundle.toml"

// Manifest is the parsed bundle.toml.
type Manifest struct {
	Bundle    BundleInfo      `toml:"bundle"`
	Artifacts []ManifestEntry `toml:"artifacts"`
}

// BundleInfo is the [bundle] table of the manifest.
type BundleInfo struct {
	Name      string   `toml:"name"`
	Version   string   `toml:"version"`
	CreatedAt string   `toml:"created_at"`
	Creator   string   `toml:"creator"`
	License   string   `toml:"license"`
	Tags      []string `toml:"tags"`
}

// ManifestEntry is one [[artifacts]] entry: a single artifact shipped in
// the bundle.
type ManifestEntry struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Path     string `toml:"path"`
	Version  string `toml:"version"`
	Origin   string `toml:"origin"`
	Upstream string `toml:"upstream"`
}

// ArtifactType converts the entry's type field to the closed Type set.
func (e ManifestEntry) ArtifactType() (artifact.Type, error) {
	return artifact.ParseType(e.Type)
}

// Key returns the entry's (name, type) identity key.
func (e ManifestEntry) Key() string {
	return e.Type + "/" + e.Name
}

// ParseManifest decodes bundle.toml bytes. Schema-level checks (required
// fields, valid types, duplicates) are the validator's job; this only
// fails on malformed TOML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	return &m, nil
}
