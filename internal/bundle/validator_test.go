package bundle

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inhies/go-bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
[bundle]
name = "code-review-pack"
version = "1.2.0"
created_at = "2026-08-01T10:00:00Z"
creator = "alice"
license = "MIT"
tags = ["review", "quality"]

[[artifacts]]
name = "code-review"
type = "skill"
path = "skills/code-review"
version = "1.2.0"
origin = "bundle"

[[artifacts]]
name = "lint-fix"
type = "command"
path = "commands/lint-fix.md"
version = "0.3.1"
`

// writeZip builds a ZIP archive on disk from entry name to content.
// Entries ending in "/" become directories.
func writeZip(t *testing.T, path string, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		if strings.HasSuffix(name, "/") {
			_, err := zw.Create(name)
			require.NoError(t, err)
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writeTestBundle(t *testing.T, extra map[string]string) string {
	t.Helper()

	entries := map[string]string{
		"bundle.toml":                   testManifest,
		"skills/code-review/SKILL.md":   "---\nname: code-review\ndescription: Reviews code\n---\n# Code Review\n",
		"skills/code-review/checks.md":  "# Checks\n",
		"commands/lint-fix.md":          "---\ndescription: Fixes lint errors\n---\nFix the lint errors.\n",
	}
	for k, v := range extra {
		entries[k] = v
	}
	return writeZip(t, filepath.Join(t.TempDir(), "pack.zip"), entries)
}

func requireIssue(t *testing.T, result *ValidationResult, cat Category, fragment string) {
	t.Helper()
	for _, issue := range result.Issues {
		if issue.Category == cat && strings.Contains(issue.Message, fragment) {
			return
		}
	}
	t.Fatalf("no %s issue containing %q; got %+v", cat, fragment, result.Issues)
}

func TestValidate_CleanBundle(t *testing.T) {
	v := NewValidator(DefaultLimits())
	result := v.Validate(writeTestBundle(t, nil), "")

	assert.True(t, result.Valid(), "issues: %+v", result.Issues)
	assert.NotEmpty(t, result.BundleHash)
	require.NotNil(t, result.Manifest)
	assert.Equal(t, "code-review-pack", result.Manifest.Bundle.Name)
	assert.Equal(t, 2, result.ArtifactCount)
	assert.Positive(t, result.TotalSizeBytes)
}

func TestValidate_MissingFile(t *testing.T) {
	v := NewValidator(DefaultLimits())
	result := v.Validate(filepath.Join(t.TempDir(), "nope.zip"), "")

	assert.False(t, result.Valid())
	assert.Empty(t, result.BundleHash)
	requireIssue(t, result, CategoryIntegrity, "not found")
}

func TestValidate_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0644))

	v := NewValidator(DefaultLimits())
	result := v.Validate(path, "")

	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.BundleHash, "hash is computed before the ZIP check")
	requireIssue(t, result, CategoryIntegrity, "not a valid ZIP archive")
}

func TestValidate_PathTraversal(t *testing.T) {
	bundle := writeTestBundle(t, map[string]string{
		"../../etc/passwd": "root:x:0:0\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySecurity, "traversal")
}

func TestValidate_AbsolutePath(t *testing.T) {
	bundle := writeTestBundle(t, map[string]string{
		"/etc/crontab": "* * * * * true\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySecurity, "absolute path")
}

func TestValidate_MissingManifest(t *testing.T) {
	bundle := writeZip(t, filepath.Join(t.TempDir(), "bare.zip"), map[string]string{
		"skills/thing/SKILL.md": "# Thing\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	assert.Nil(t, result.Manifest)
	requireIssue(t, result, CategorySchema, "bundle.toml")
}

func TestValidate_MalformedManifest(t *testing.T) {
	bundle := writeZip(t, filepath.Join(t.TempDir(), "broken.zip"), map[string]string{
		"bundle.toml": "[bundle\nname = ",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	assert.Nil(t, result.Manifest)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	bundle := writeZip(t, filepath.Join(t.TempDir(), "partial.zip"), map[string]string{
		"bundle.toml": "[bundle]\nname = \"x\"\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySchema, "bundle.version")
	requireIssue(t, result, CategorySchema, "bundle.created_at")
	requireIssue(t, result, CategorySchema, "bundle.creator")
}

func TestValidate_DuplicateArtifacts(t *testing.T) {
	manifest := `
[bundle]
name = "dup"
version = "1.0.0"
created_at = "2026-08-01T10:00:00Z"
creator = "bob"

[[artifacts]]
name = "review"
type = "skill"
path = "skills/review"

[[artifacts]]
name = "review"
type = "skill"
path = "skills/review-2"
`
	bundle := writeZip(t, filepath.Join(t.TempDir(), "dup.zip"), map[string]string{
		"bundle.toml": manifest,
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySchema, "duplicate artifact skill/review")
}

func TestValidate_InvalidArtifactType(t *testing.T) {
	manifest := `
[bundle]
name = "bad-type"
version = "1.0.0"
created_at = "2026-08-01T10:00:00Z"
creator = "bob"

[[artifacts]]
name = "thing"
type = "plugin"
path = "plugins/thing"
`
	bundle := writeZip(t, filepath.Join(t.TempDir(), "type.zip"), map[string]string{
		"bundle.toml": manifest,
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySchema, "invalid artifact type")
}

func TestValidate_ArtifactNameWithSeparators(t *testing.T) {
	manifest := `
[bundle]
name = "evil"
version = "1.0.0"
created_at = "2026-08-01T10:00:00Z"
creator = "mallory"

[[artifacts]]
name = "../escape"
type = "skill"
path = "skills/escape"
`
	bundle := writeZip(t, filepath.Join(t.TempDir(), "evil.zip"), map[string]string{
		"bundle.toml": manifest,
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySecurity, "path separators or traversal")
}

func TestValidate_HashDeterminismAndExpectedHash(t *testing.T) {
	bundle := writeTestBundle(t, nil)
	v := NewValidator(DefaultLimits())

	first := v.Validate(bundle, "")
	second := v.Validate(bundle, "")
	assert.Equal(t, first.BundleHash, second.BundleHash)

	// Matching expected hash does not change validity.
	matched := v.Validate(bundle, first.BundleHash)
	assert.True(t, matched.Valid())

	mismatched := v.Validate(bundle, strings.Repeat("0", 64))
	assert.False(t, mismatched.Valid())
	requireIssue(t, mismatched, CategoryIntegrity, "hash mismatch")
	assert.Equal(t, first.BundleHash, mismatched.BundleHash, "actual hash still reported")
}

func TestValidate_SuspiciousExtensionWarns(t *testing.T) {
	bundle := writeTestBundle(t, map[string]string{
		"skills/code-review/helper.sh": "#!/bin/sh\ntrue\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.True(t, result.Valid(), "suspicious extensions warn, not fail")
	require.NotEmpty(t, result.Warnings())
	requireIssue(t, result, CategorySecurity, "suspicious file extension")
}

func TestValidate_FileCountLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFiles = 2

	bundle := writeTestBundle(t, nil) // has 4 files
	result := NewValidator(limits).Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySize, "more than 2 files")
}

func TestValidate_PerFileSizeLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFileSize = 16 * bytesize.B

	bundle := writeTestBundle(t, map[string]string{
		"skills/code-review/big.md": strings.Repeat("data ", 100),
	})
	result := NewValidator(limits).Validate(bundle, "")

	assert.False(t, result.Valid())
	requireIssue(t, result, CategorySize, "per-file limit")
}

func TestValidate_CompressionRatioWarns(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxCompressionRatio = 10

	// Zero-filled content compresses far past 10:1.
	bundle := writeTestBundle(t, map[string]string{
		"skills/code-review/zeros.bin": strings.Repeat("\x00", 1<<20),
	})
	result := NewValidator(limits).Validate(bundle, "")

	requireIssue(t, result, CategorySize, "compression ratio")
}

func TestValidate_HiddenFileWarns(t *testing.T) {
	bundle := writeTestBundle(t, map[string]string{
		"skills/code-review/.secrets": "token\n",
	})

	v := NewValidator(DefaultLimits())
	result := v.Validate(bundle, "")

	assert.True(t, result.Valid())
	requireIssue(t, result, CategorySecurity, "hidden file")
}
