package bundle

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog/log"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

// Limits bounds what the validator accepts before declaring an archive
// unsafe to extract.
type Limits struct {
	// MaxBundleSize caps the archive file itself.
	MaxBundleSize bytesize.ByteSize
	// MaxFileSize caps each member's uncompressed size.
	MaxFileSize bytesize.ByteSize
	// MaxFiles caps the member count.
	MaxFiles int
	// MaxCompressionRatio flags members whose uncompressed/compressed
	// ratio suggests a zip bomb.
	MaxCompressionRatio float64
}

// DefaultLimits returns the standard validation limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBundleSize:       500 * bytesize.MB,
		MaxFileSize:         100 * bytesize.MB,
		MaxFiles:            10000,
		MaxCompressionRatio: 100,
	}
}

// totalSizeLimit is the zip-bomb heuristic: total uncompressed content may
// not exceed ten times the bundle size limit.
func (l Limits) totalSizeLimit() int64 {
	return int64(l.MaxBundleSize) * 10
}

// suspiciousExtensions flag executable content that has no business in a
// skill/command/agent bundle.
var suspiciousExtensions = []string{".exe", ".dll", ".so", ".dylib", ".bat", ".sh", ".cmd"}

// maxManifestSize caps how much of bundle.toml is read into memory.
const maxManifestSize = 1 << 20

// Validator inspects untrusted bundle archives for integrity, security and
// schema problems without extracting anything to disk.
type Validator struct {
	limits Limits
}

// NewValidator creates a validator with the given limits.
func NewValidator(limits Limits) *Validator {
	if limits.MaxBundleSize == 0 {
		limits = DefaultLimits()
	}
	return &Validator{limits: limits}
}

// Validate inspects the archive at bundlePath. When expectedHash is
// non-empty it must equal the hex SHA-256 of the archive bytes.
//
// Validate never writes to disk and never extracts members; it reads ZIP
// metadata, member streams for CRC verification, and the manifest bytes
// in memory. It always returns a result, never an error: failures are
// reported as issues.
func (v *Validator) Validate(bundlePath, expectedHash string) *ValidationResult {
	logger := log.With().Str("bundle", bundlePath).Logger()
	result := &ValidationResult{}

	// Fail-fast file checks. No hash is available until the file is read.
	info, err := os.Stat(bundlePath)
	if err != nil {
		result.addIssue(SeverityError, CategoryIntegrity, "", fmt.Sprintf("bundle file not found: %s", bundlePath))
		return result
	}
	if !info.Mode().IsRegular() {
		result.addIssue(SeverityError, CategoryIntegrity, "", fmt.Sprintf("bundle path is not a regular file: %s", bundlePath))
		return result
	}
	if info.Size() > int64(v.limits.MaxBundleSize) {
		result.addIssue(SeverityError, CategorySize, "", fmt.Sprintf(
			"bundle size %s exceeds limit %s",
			bytesize.New(float64(info.Size())), v.limits.MaxBundleSize))
		return result
	}

	hash, err := hashFileSHA256(bundlePath)
	if err != nil {
		result.addIssue(SeverityError, CategoryIntegrity, "", fmt.Sprintf("reading bundle: %v", err))
		return result
	}
	result.BundleHash = hash

	if expectedHash != "" && !strings.EqualFold(expectedHash, hash) {
		result.addIssue(SeverityError, CategoryIntegrity, "", fmt.Sprintf(
			"bundle hash mismatch: expected %s, got %s", expectedHash, hash))
		return result
	}

	zr, err := zip.OpenReader(bundlePath)
	if err != nil {
		result.addIssue(SeverityError, CategoryIntegrity, "", fmt.Sprintf("not a valid ZIP archive: %v", err))
		return result
	}
	defer zr.Close()

	v.scanEntries(&zr.Reader, result)

	// CRC verification decompresses member streams, so it only runs once
	// the metadata scan found no size or security errors.
	if result.Valid() {
		v.verifyIntegrity(&zr.Reader, result)
	}

	v.validateManifest(&zr.Reader, result)

	logger.Debug().
		Bool("valid", result.Valid()).
		Int("issues", len(result.Issues)).
		Int("artifacts", result.ArtifactCount).
		Msg("Bundle validation finished")

	return result
}

// scanEntries walks every member's metadata: path safety, per-file and
// total size limits, file-count limit, compression ratio, and suspicious
// extensions.
func (v *Validator) scanEntries(zr *zip.Reader, result *ValidationResult) {
	var totalUncompressed int64
	fileCount := 0

	for _, f := range zr.File {
		checkEntryPath(f.Name, result)

		if isDirEntry(f) {
			continue
		}

		fileCount++
		if fileCount > v.limits.MaxFiles {
			result.addIssue(SeverityError, CategorySize, "", fmt.Sprintf(
				"archive contains more than %d files", v.limits.MaxFiles))
			break
		}

		size := int64(f.UncompressedSize64)
		if size > int64(v.limits.MaxFileSize) {
			result.addIssue(SeverityError, CategorySize, f.Name, fmt.Sprintf(
				"file size %s exceeds per-file limit %s",
				bytesize.New(float64(size)), v.limits.MaxFileSize))
		}

		totalUncompressed += size
		if totalUncompressed > v.limits.totalSizeLimit() {
			result.addIssue(SeverityError, CategorySize, f.Name, fmt.Sprintf(
				"total uncompressed size exceeds %s (possible zip bomb)",
				bytesize.New(float64(v.limits.totalSizeLimit()))))
		}

		if f.CompressedSize64 > 0 {
			ratio := float64(f.UncompressedSize64) / float64(f.CompressedSize64)
			if ratio > v.limits.MaxCompressionRatio {
				result.addIssue(SeverityWarning, CategorySize, f.Name, fmt.Sprintf(
					"compression ratio %.0f:1 exceeds %.0f:1 (possible zip bomb)",
					ratio, v.limits.MaxCompressionRatio))
			}
		}

		ext := strings.ToLower(path.Ext(f.Name))
		for _, bad := range suspiciousExtensions {
			if ext == bad {
				result.addIssue(SeverityWarning, CategorySecurity, f.Name, fmt.Sprintf(
					"suspicious file extension %s", ext))
				break
			}
		}
	}

	result.TotalSizeBytes = totalUncompressed
}

// verifyIntegrity decompresses every member against its CRC, bounded by
// the declared sizes already vetted by scanEntries.
func (v *Validator) verifyIntegrity(zr *zip.Reader, result *ValidationResult) {
	for _, f := range zr.File {
		if isDirEntry(f) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			result.addIssue(SeverityError, CategoryIntegrity, f.Name, fmt.Sprintf("corrupt archive member: %v", err))
			return
		}

		limit := int64(f.UncompressedSize64) + 1
		n, err := io.Copy(io.Discard, io.LimitReader(rc, limit))
		rc.Close()
		if err != nil {
			result.addIssue(SeverityError, CategoryIntegrity, f.Name, fmt.Sprintf("corrupt archive member: %v", err))
			return
		}
		if n >= limit {
			result.addIssue(SeverityError, CategoryIntegrity, f.Name,
				"member is larger than its declared uncompressed size")
			return
		}
	}
}

// validateManifest locates, parses and schema-checks bundle.toml.
func (v *Validator) validateManifest(zr *zip.Reader, result *ValidationResult) {
	var manifestFile *zip.File
	for _, f := range zr.File {
		if f.Name == ManifestName {
			manifestFile = f
			break
		}
	}
	if manifestFile == nil {
		result.addIssue(SeverityError, CategorySchema, "", fmt.Sprintf(
			"required manifest %s not found at archive root", ManifestName))
		return
	}

	rc, err := manifestFile.Open()
	if err != nil {
		result.addIssue(SeverityError, CategoryIntegrity, ManifestName, fmt.Sprintf("reading manifest: %v", err))
		return
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxManifestSize))
	rc.Close()
	if err != nil {
		result.addIssue(SeverityError, CategoryIntegrity, ManifestName, fmt.Sprintf("reading manifest: %v", err))
		return
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		result.addIssue(SeverityError, CategorySchema, ManifestName, err.Error())
		return
	}

	v.checkManifestSchema(manifest, result)
	result.Manifest = manifest
	result.ArtifactCount = len(manifest.Artifacts)
}

// checkManifestSchema enforces required fields, valid artifact types,
// safe artifact names and paths, and identity uniqueness.
func (v *Validator) checkManifestSchema(m *Manifest, result *ValidationResult) {
	required := map[string]string{
		"bundle.name":       m.Bundle.Name,
		"bundle.version":    m.Bundle.Version,
		"bundle.created_at": m.Bundle.CreatedAt,
		"bundle.creator":    m.Bundle.Creator,
	}
	for _, field := range []string{"bundle.name", "bundle.version", "bundle.created_at", "bundle.creator"} {
		if required[field] == "" {
			result.addIssue(SeverityError, CategorySchema, ManifestName, fmt.Sprintf(
				"required manifest field %s is missing", field))
		}
	}

	seen := make(map[string]bool, len(m.Artifacts))
	for i, entry := range m.Artifacts {
		where := fmt.Sprintf("artifacts[%d]", i)

		if entry.Name == "" {
			result.addIssue(SeverityError, CategorySchema, ManifestName, where+": name is required")
		} else if strings.ContainsAny(entry.Name, "/\\") || strings.Contains(entry.Name, "..") {
			result.addIssue(SeverityError, CategorySecurity, ManifestName, fmt.Sprintf(
				"%s: artifact name %q contains path separators or traversal sequences", where, entry.Name))
		}

		if _, err := artifact.ParseType(entry.Type); err != nil {
			result.addIssue(SeverityError, CategorySchema, ManifestName, fmt.Sprintf("%s: %v", where, err))
		}

		if entry.Path == "" {
			result.addIssue(SeverityError, CategorySchema, ManifestName, where+": path is required")
		} else {
			checkEntryPath(entry.Path, result)
		}

		if entry.Name != "" && entry.Type != "" {
			key := entry.Key()
			if seen[key] {
				result.addIssue(SeverityError, CategorySchema, ManifestName, fmt.Sprintf(
					"%s: duplicate artifact %s", where, key))
			}
			seen[key] = true
		}
	}
}

// checkEntryPath is the path-safety gate applied to every archive member
// name and every manifest artifact path. Backslashes are normalized so
// Windows-produced archives get the same treatment.
func checkEntryPath(name string, result *ValidationResult) {
	normalized := strings.ReplaceAll(name, "\\", "/")

	if strings.HasPrefix(normalized, "/") {
		result.addIssue(SeverityError, CategorySecurity, name, "absolute path not allowed in archive")
		return
	}
	if len(normalized) >= 2 && normalized[1] == ':' && isDriveLetter(normalized[0]) {
		result.addIssue(SeverityError, CategorySecurity, name, "absolute Windows drive path not allowed in archive")
		return
	}

	for _, component := range strings.Split(normalized, "/") {
		if component == ".." {
			result.addIssue(SeverityError, CategorySecurity, name, "path traversal sequence (..) not allowed in archive")
			return
		}
		if len(component) > 255 {
			result.addIssue(SeverityWarning, CategorySecurity, name, "path component longer than 255 characters")
		}
		if len(component) > 1 && strings.HasPrefix(component, ".") {
			result.addIssue(SeverityWarning, CategorySecurity, name, "hidden file or directory in archive")
		}
	}
}

// safeEntryPath reports whether a member name passes the path-safety gate.
// Used by extraction as defense in depth.
func safeEntryPath(name string) bool {
	var scratch ValidationResult
	checkEntryPath(name, &scratch)
	return scratch.Valid()
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir()
}

func hashFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
