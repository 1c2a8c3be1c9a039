package bundle

import (
	"fmt"

	"golang.org/x/mod/sumdb/dirhash"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

// contentHash computes the tracked hash for an artifact's on-disk content.
// Skills are directories hashed with the module dirhash scheme so the hash
// is stable across file ordering; commands and agents are single files.
func contentHash(path string, typ artifact.Type) (string, error) {
	if typ == artifact.TypeSkill {
		h, err := dirhash.HashDir(path, "", dirhash.Hash1)
		if err != nil {
			return "", fmt.Errorf("hashing skill %s: %w", path, err)
		}
		return h, nil
	}

	h, err := hashFileSHA256(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return "sha256:" + h, nil
}
