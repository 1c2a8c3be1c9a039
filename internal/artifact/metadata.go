package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Metadata is the descriptive header parsed from an artifact's markdown
// frontmatter. Every field is optional; an artifact with no frontmatter
// yields an empty Metadata.
type Metadata struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	License     string   `yaml:"license,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// maxFrontmatterSize limits frontmatter to prevent YAML parsing attacks.
const maxFrontmatterSize = 64 * 1024

var frontmatterDelimiter = []byte("---")

// ExtractMetadata reads the metadata for an artifact rooted at path.
// Skills are directories whose metadata lives in SKILL.md; commands and
// agents are single markdown files carrying their own frontmatter.
func ExtractMetadata(path string, typ Type) (*Metadata, error) {
	mdPath := path
	if typ == TypeSkill {
		mdPath = filepath.Join(path, "SKILL.md")
	}

	content, err := os.ReadFile(mdPath)
	if err != nil {
		if os.IsNotExist(err) && typ == TypeSkill {
			// Skills without a SKILL.md are tolerated; they simply
			// carry no descriptive metadata.
			return &Metadata{}, nil
		}
		return nil, fmt.Errorf("reading artifact metadata: %w", err)
	}

	return ParseFrontmatter(content)
}

// ParseFrontmatter extracts and parses YAML frontmatter from markdown
// content. Content without a leading frontmatter block yields an empty
// Metadata rather than an error.
func ParseFrontmatter(content []byte) (*Metadata, error) {
	content = bytes.TrimSpace(content)

	if !bytes.HasPrefix(content, frontmatterDelimiter) {
		return &Metadata{}, nil
	}

	rest := content[len(frontmatterDelimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	endIdx := bytes.Index(rest, frontmatterDelimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("frontmatter missing closing delimiter (---)")
	}

	fmBytes := rest[:endIdx]

	if len(fmBytes) > maxFrontmatterSize {
		return nil, fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxFrontmatterSize)
	}

	var md Metadata
	if err := yaml.Unmarshal(fmBytes, &md); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	return &md, nil
}
