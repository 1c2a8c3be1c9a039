package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	assert.Equal(t, "code-review-pack", m.Bundle.Name)
	assert.Equal(t, "1.2.0", m.Bundle.Version)
	assert.Equal(t, "alice", m.Bundle.Creator)
	assert.Equal(t, []string{"review", "quality"}, m.Bundle.Tags)

	require.Len(t, m.Artifacts, 2)
	assert.Equal(t, "code-review", m.Artifacts[0].Name)
	assert.Equal(t, "skills/code-review", m.Artifacts[0].Path)

	typ, err := m.Artifacts[0].ArtifactType()
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeSkill, typ)
	assert.Equal(t, "skill/code-review", m.Artifacts[0].Key())
}

func TestParseManifest_MalformedTOML(t *testing.T) {
	_, err := ParseManifest([]byte("[bundle\nname ="))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle.toml")
}

func TestParseManifest_UnknownTypeDeferred(t *testing.T) {
	m, err := ParseManifest([]byte(`
[bundle]
name = "x"
version = "1.0.0"
created_at = "2026-01-01T00:00:00Z"
creator = "y"

[[artifacts]]
name = "thing"
type = "plugin"
path = "plugins/thing"
`))
	require.NoError(t, err, "type validation is the validator's job, not the parser's")

	_, err = m.Artifacts[0].ArtifactType()
	assert.Error(t, err)
}
