package bundle

import (
	"time"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category names the concern a validation issue belongs to.
type Category string

const (
	CategorySecurity  Category = "security"
	CategorySchema    Category = "schema"
	CategoryIntegrity Category = "integrity"
	CategorySize      Category = "size"
)

// ValidationIssue is one finding from bundle validation.
type ValidationIssue struct {
	Severity Severity
	Category Category
	Message  string
	FilePath string
}

// ValidationResult collects every issue found while validating a bundle,
// along with what could be parsed from it.
type ValidationResult struct {
	Issues []ValidationIssue

	// BundleHash is the SHA-256 of the archive bytes, populated once the
	// file was read, even when later checks fail.
	BundleHash string

	// Manifest is the parsed bundle.toml, nil when missing or unparsable.
	Manifest *Manifest

	ArtifactCount  int
	TotalSizeBytes int64
}

// Valid reports whether no error-severity issues were found.
func (r *ValidationResult) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the error-severity issues.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

func (r *ValidationResult) filter(sev Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

func (r *ValidationResult) addIssue(sev Severity, cat Category, filePath, message string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Severity: sev,
		Category: cat,
		Message:  message,
		FilePath: filePath,
	})
}

// Outcome records what happened to one artifact during import.
type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeMerged   Outcome = "merged"
	OutcomeForked   Outcome = "forked"
	OutcomeSkipped  Outcome = "skipped"
)

// ImportedArtifact is the per-artifact record in an ImportResult.
type ImportedArtifact struct {
	Name    string
	Type    artifact.Type
	Outcome Outcome
	NewName string
	Reason  string
}

// ImportResult is the aggregate outcome of one import_bundle call.
// Invariant: Success implies Errors is empty.
type ImportResult struct {
	Success    bool
	DryRun     bool
	BundleName string
	BundleHash string
	Collection string

	ImportedCount int
	SkippedCount  int
	ForkedCount   int
	MergedCount   int

	Artifacts []ImportedArtifact
	Errors    []string
	Warnings  []string

	StartedAt time.Time
	Duration  time.Duration
}

// record appends a per-artifact outcome and bumps the matching counter.
func (r *ImportResult) record(a ImportedArtifact) {
	r.Artifacts = append(r.Artifacts, a)
	switch a.Outcome {
	case OutcomeImported:
		r.ImportedCount++
	case OutcomeMerged:
		r.MergedCount++
	case OutcomeForked:
		r.ForkedCount++
	case OutcomeSkipped:
		r.SkippedCount++
	}
}

func (r *ImportResult) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *ImportResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
