package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	content := []byte(`---
name: code-review
description: Reviews pull requests
version: 1.2.0
tags: [review, quality]
---

# Code Review

Body text.
`)

	md, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Equal(t, "code-review", md.Name)
	assert.Equal(t, "Reviews pull requests", md.Description)
	assert.Equal(t, "1.2.0", md.Version)
	assert.Equal(t, []string{"review", "quality"}, md.Tags)
}

func TestParseFrontmatter_NoFrontmatter(t *testing.T) {
	md, err := ParseFrontmatter([]byte("# Just a heading\n\nplain markdown"))
	require.NoError(t, err)
	assert.Empty(t, md.Name)
}

func TestParseFrontmatter_UnterminatedBlock(t *testing.T) {
	_, err := ParseFrontmatter([]byte("---\nname: broken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing delimiter")
}

func TestParseFrontmatter_InvalidYAML(t *testing.T) {
	_, err := ParseFrontmatter([]byte("---\nname: [unclosed\n---\n"))
	require.Error(t, err)
}

func TestExtractMetadata_Skill(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "my-skill")
	require.NoError(t, os.MkdirAll(skillDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"),
		[]byte("---\nname: my-skill\ndescription: does things\n---\nbody"), 0644))

	md, err := ExtractMetadata(skillDir, TypeSkill)
	require.NoError(t, err)
	assert.Equal(t, "my-skill", md.Name)
	assert.Equal(t, "does things", md.Description)
}

func TestExtractMetadata_SkillWithoutSkillMD(t *testing.T) {
	dir := t.TempDir()
	md, err := ExtractMetadata(dir, TypeSkill)
	require.NoError(t, err)
	assert.Empty(t, md.Name)
}

func TestExtractMetadata_CommandFile(t *testing.T) {
	dir := t.TempDir()
	cmdPath := filepath.Join(dir, "deploy.md")
	require.NoError(t, os.WriteFile(cmdPath,
		[]byte("---\nname: deploy\nversion: 0.3.1\n---\nrun it"), 0644))

	md, err := ExtractMetadata(cmdPath, TypeCommand)
	require.NoError(t, err)
	assert.Equal(t, "deploy", md.Name)
	assert.Equal(t, "0.3.1", md.Version)
}

func TestExtractMetadata_MissingCommandFile(t *testing.T) {
	_, err := ExtractMetadata(filepath.Join(t.TempDir(), "nope.md"), TypeCommand)
	require.Error(t, err)
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"skill", "command", "agent"} {
		typ, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, s, typ.String())
	}

	_, err := ParseType("plugin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid artifact type")
}
