package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"golang.org/x/mod/semver"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
	"github.com/skillmeat/skillmeat-cli/internal/collection"
	"github.com/skillmeat/skillmeat-cli/internal/signing"
	"github.com/skillmeat/skillmeat-cli/internal/snapshot"
	"github.com/skillmeat/skillmeat-cli/telemetry"
	"github.com/skillmeat/skillmeat-cli/util/common/errors"
	"github.com/skillmeat/skillmeat-cli/util/common/fileutil"
)

// Importer runs the full bundle import pipeline: validate, verify the
// signature, detect and resolve conflicts, snapshot, apply, persist, and
// roll back on failure.
type Importer struct {
	validator   *Validator
	collections *collection.Manager
	snapshots   *snapshot.Manager
	verifier    signing.Verifier
	tracker     telemetry.Tracker
	reporter    Reporter
}

// NewImporter wires an importer. tracker and reporter may be nil.
func NewImporter(
	validator *Validator,
	collections *collection.Manager,
	snapshots *snapshot.Manager,
	verifier signing.Verifier,
	tracker telemetry.Tracker,
	reporter Reporter,
) *Importer {
	if tracker == nil {
		tracker = telemetry.Nop()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Importer{
		validator:   validator,
		collections: collections,
		snapshots:   snapshots,
		verifier:    verifier,
		tracker:     tracker,
		reporter:    reporter,
	}
}

// Options control one import run.
type Options struct {
	// Collection is the target collection name.
	Collection string
	// Strategy settles (name, type) conflicts.
	Strategy StrategyName
	// Prompter is required for the interactive strategy.
	Prompter Prompter
	// DryRun reports what would happen without mutating anything.
	DryRun bool
	// Force downgrades validation errors and invalid signatures to
	// warnings. A missing or unparsable manifest still aborts.
	Force bool
	// ExpectedHash, when set, must match the bundle's SHA-256.
	ExpectedHash string
	// VerifySignature checks the sidecar signature when present.
	VerifySignature bool
	// RequireSignature aborts unless the bundle is signed by a trusted key.
	RequireSignature bool
	// Exclude skips manifest artifacts whose name matches any pattern.
	Exclude []string
	// ForkSuffix overrides the default fork rename suffix.
	ForkSuffix string
}

// Import runs the pipeline for the bundle at bundlePath. It always returns
// a result; failures are reported through Result.Errors, never panics or
// error returns. The target collection is only mutated when every artifact
// applies and the lockfile persists; any failure past the snapshot point
// triggers a rollback.
func (im *Importer) Import(ctx context.Context, bundlePath string, opts Options) *ImportResult {
	result := &ImportResult{
		DryRun:     opts.DryRun,
		Collection: opts.Collection,
		StartedAt:  time.Now().UTC(),
	}
	defer func() { result.Duration = time.Since(result.StartedAt) }()

	logger := log.With().
		Str("bundle", bundlePath).
		Str("collection", opts.Collection).
		Bool("dry_run", opts.DryRun).
		Logger()

	strategy, err := ForName(opts.Strategy, opts.Prompter, opts.ForkSuffix)
	if err != nil {
		result.addError(err.Error())
		return im.fail(result, "strategy")
	}
	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		result.addError(err.Error())
		return im.fail(result, "exclude")
	}

	// Validation.
	im.report(PhaseValidating, "validating bundle", LevelInfo)
	vr := im.validator.Validate(bundlePath, opts.ExpectedHash)
	result.BundleHash = vr.BundleHash
	for _, w := range vr.Warnings() {
		result.addWarning(w.Message)
	}
	im.tracker.Track(telemetry.EventBundleValidated, map[string]interface{}{
		"valid":     vr.Valid(),
		"artifacts": vr.ArtifactCount,
	})
	if !vr.Valid() {
		if !opts.Force {
			for _, e := range vr.Errors() {
				result.addError(e.Message)
			}
			return im.fail(result, "validation")
		}
		for _, e := range vr.Errors() {
			result.addWarning("forced past validation error: " + e.Message)
		}
		logger.Warn().Int("errors", len(vr.Errors())).Msg("Importing despite validation errors (--force)")
	}
	if vr.Manifest == nil {
		// Without a manifest there is nothing to import, forced or not.
		result.addError("bundle has no usable manifest")
		return im.fail(result, "validation")
	}
	result.BundleName = vr.Manifest.Bundle.Name

	// Signature.
	if opts.VerifySignature || opts.RequireSignature {
		im.report(PhaseVerifyingSignature, "verifying signature", LevelInfo)
		if !im.checkSignature(bundlePath, opts, result) {
			return im.fail(result, "signature")
		}
	}

	// Collection load. Failures here need no rollback: nothing was touched.
	im.report(PhaseLoadingCollection, "loading collection "+opts.Collection, LevelInfo)
	col, err := im.collections.Load(opts.Collection)
	if err != nil {
		result.addError(err.Error())
		return im.fail(result, "load_collection")
	}

	// Extraction to a scratch directory.
	im.report(PhaseExtracting, "extracting bundle", LevelInfo)
	scratch, err := os.MkdirTemp("", "sm-import-*")
	if err != nil {
		result.addError(fmt.Sprintf("creating scratch directory: %v", err))
		return im.fail(result, "extract")
	}
	defer os.RemoveAll(scratch)
	if err := extractArchive(bundlePath, scratch, int64(im.validator.limits.MaxFileSize)); err != nil {
		result.addError(err.Error())
		return im.fail(result, "extract")
	}

	// Conflict detection.
	im.report(PhaseDetectingConflicts, "detecting conflicts", LevelInfo)
	plain, conflicts := im.partition(vr.Manifest, col, excludes, result)

	// Resolution. Prompt failures abort before anything is mutated.
	decisions := make([]ConflictDecision, 0, len(conflicts))
	if len(conflicts) > 0 {
		im.report(PhaseResolvingConflicts,
			fmt.Sprintf("resolving %d conflicts", len(conflicts)), LevelInfo)
		for _, conflict := range conflicts {
			decision, err := strategy.Resolve(conflict, col)
			if err != nil {
				result.addError(err.Error())
				return im.fail(result, "resolve")
			}
			decisions = append(decisions, decision)
		}
	}

	if opts.DryRun {
		im.plan(plain, decisions, result)
		result.Success = len(result.Errors) == 0
		im.report(PhaseDone, "dry run complete", LevelInfo)
		return result
	}

	// Snapshot before mutating. A failed snapshot is reported but does not
	// block the import; it only removes the rollback safety net.
	im.report(PhaseSnapshotting, "snapshotting collection", LevelInfo)
	snap, err := im.snapshots.AutoSnapshot(col.Name, col.Path,
		fmt.Sprintf("before import of bundle %s", result.BundleName))
	if err != nil {
		result.addWarning(fmt.Sprintf("snapshot failed, rollback unavailable: %v", err))
		logger.Warn().Err(err).Msg("Proceeding without a rollback snapshot")
		snap = nil
	}

	// Apply.
	im.report(PhaseImporting, "importing artifacts", LevelInfo)
	if err := im.apply(ctx, col, scratch, plain, conflicts, decisions, result); err != nil {
		result.addError(err.Error())
		return im.rollback(result, col, snap)
	}

	// Persist.
	im.report(PhasePersisting, "persisting lockfile", LevelInfo)
	if err := im.collections.Save(col); err != nil {
		result.addError(err.Error())
		return im.rollback(result, col, snap)
	}

	result.Success = true
	im.report(PhaseDone, "import complete", LevelInfo)
	im.tracker.Track(telemetry.EventBundleImported, map[string]interface{}{
		"bundle":   result.BundleName,
		"imported": result.ImportedCount,
		"merged":   result.MergedCount,
		"forked":   result.ForkedCount,
		"skipped":  result.SkippedCount,
	})
	logger.Info().
		Int("imported", result.ImportedCount).
		Int("merged", result.MergedCount).
		Int("forked", result.ForkedCount).
		Int("skipped", result.SkippedCount).
		Msg("Bundle imported")
	return result
}

// checkSignature enforces the signature policy. Returns false to abort.
func (im *Importer) checkSignature(bundlePath string, opts Options, result *ImportResult) bool {
	sig, err := im.verifier.Verify(bundlePath)
	if err != nil {
		result.addError(fmt.Sprintf("signature verification failed: %v", err))
		return false
	}
	switch sig.Status {
	case signing.StatusSigned:
		log.Debug().Str("signer", sig.Signer).Msg("Bundle signature verified")
		return true
	case signing.StatusUnsigned:
		if opts.RequireSignature {
			result.addError("bundle is not signed and a signature is required")
			return false
		}
		result.addWarning("bundle is not signed")
		return true
	case signing.StatusInvalid:
		if opts.Force {
			result.addWarning("forced past invalid bundle signature")
			return true
		}
		result.addError("bundle signature is invalid or signed by an untrusted key")
		return false
	}
	result.addError(fmt.Sprintf("unexpected signature status %q", sig.Status))
	return false
}

// partition splits manifest entries into non-conflicting entries and
// conflicts, recording excluded entries as skipped on the way.
func (im *Importer) partition(
	m *Manifest,
	col *collection.Collection,
	excludes []glob.Glob,
	result *ImportResult,
) (plain []ManifestEntry, conflicts []Conflict) {
	for _, entry := range m.Artifacts {
		typ, err := entry.ArtifactType()
		if err != nil {
			// Reachable only under --force past schema errors.
			result.addWarning(fmt.Sprintf("skipping %s: %v", entry.Name, err))
			continue
		}

		if matchesAny(excludes, entry.Name) {
			result.record(ImportedArtifact{
				Name:    entry.Name,
				Type:    typ,
				Outcome: OutcomeSkipped,
				Reason:  "excluded by pattern",
			})
			continue
		}

		if existing := col.Find(entry.Name, typ); existing != nil {
			conflicts = append(conflicts, Conflict{Existing: *existing, Incoming: entry})
			continue
		}
		plain = append(plain, entry)
	}
	return plain, conflicts
}

// plan records dry-run outcomes without touching disk.
func (im *Importer) plan(plain []ManifestEntry, decisions []ConflictDecision, result *ImportResult) {
	for _, entry := range plain {
		typ, _ := entry.ArtifactType()
		result.record(ImportedArtifact{
			Name:    entry.Name,
			Type:    typ,
			Outcome: OutcomeImported,
			Reason:  "new artifact",
		})
	}
	for _, d := range decisions {
		result.record(ImportedArtifact{
			Name:    d.ArtifactName,
			Type:    d.ArtifactType,
			Outcome: outcomeFor(d.Resolution),
			NewName: d.NewName,
			Reason:  d.Reason,
		})
	}
}

// apply copies artifact content into the collection and updates its
// in-memory state. conflicts and decisions are aligned slices: decisions[i]
// settles conflicts[i]. Any error aborts; the caller rolls back.
func (im *Importer) apply(
	ctx context.Context,
	col *collection.Collection,
	scratch string,
	plain []ManifestEntry,
	conflicts []Conflict,
	decisions []ConflictDecision,
	result *ImportResult,
) error {
	for _, entry := range plain {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import cancelled: %w", err)
		}
		typ, _ := entry.ArtifactType()
		if err := im.importEntry(col, scratch, entry, entry.Name, typ, time.Time{}); err != nil {
			return err
		}
		result.record(ImportedArtifact{
			Name:    entry.Name,
			Type:    typ,
			Outcome: OutcomeImported,
			Reason:  "new artifact",
		})
		im.tracker.Track(telemetry.EventArtifactImported, map[string]interface{}{
			"artifact": entry.Name, "type": string(typ),
		})
	}

	for i, d := range decisions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import cancelled: %w", err)
		}
		if err := im.applyDecision(col, scratch, d, conflicts[i].Incoming, result); err != nil {
			return err
		}
	}
	return nil
}

// applyDecision executes one resolved conflict.
func (im *Importer) applyDecision(
	col *collection.Collection,
	scratch string,
	d ConflictDecision,
	entry ManifestEntry,
	result *ImportResult,
) error {
	switch d.Resolution {
	case ResolutionSkip:
		result.record(ImportedArtifact{
			Name:    d.ArtifactName,
			Type:    d.ArtifactType,
			Outcome: OutcomeSkipped,
			Reason:  d.Reason,
		})
		im.tracker.Track(telemetry.EventArtifactSkipped, map[string]interface{}{
			"artifact": d.ArtifactName, "type": string(d.ArtifactType),
		})
		return nil

	case ResolutionMerge:
		existing := col.Find(d.ArtifactName, d.ArtifactType)
		var addedAt time.Time
		if existing != nil {
			addedAt = existing.AddedAt
			if isDowngrade(existing.Version, entry.Version) {
				result.addWarning(fmt.Sprintf(
					"merge of %s downgrades version %s to %s",
					artifact.Key(d.ArtifactName, d.ArtifactType), existing.Version, entry.Version))
			}
			if err := im.collections.RemoveArtifact(col, d.ArtifactName, d.ArtifactType); err != nil {
				return err
			}
		}
		if err := im.importEntry(col, scratch, entry, d.ArtifactName, d.ArtifactType, addedAt); err != nil {
			return err
		}
		result.record(ImportedArtifact{
			Name:    d.ArtifactName,
			Type:    d.ArtifactType,
			Outcome: OutcomeMerged,
			Reason:  d.Reason,
		})
		im.tracker.Track(telemetry.EventArtifactMerged, map[string]interface{}{
			"artifact": d.ArtifactName, "type": string(d.ArtifactType),
		})
		return nil

	case ResolutionFork:
		if err := im.importEntry(col, scratch, entry, d.NewName, d.ArtifactType, time.Time{}); err != nil {
			return err
		}
		result.record(ImportedArtifact{
			Name:    d.ArtifactName,
			Type:    d.ArtifactType,
			Outcome: OutcomeForked,
			NewName: d.NewName,
			Reason:  d.Reason,
		})
		im.tracker.Track(telemetry.EventArtifactForked, map[string]interface{}{
			"artifact": d.ArtifactName, "type": string(d.ArtifactType), "new_name": d.NewName,
		})
		return nil
	}
	return fmt.Errorf("unknown resolution %q for %s", d.Resolution,
		artifact.Key(d.ArtifactName, d.ArtifactType))
}

// importEntry copies one artifact's content from the scratch directory into
// the collection and adds it to the in-memory set under destName. addedAt
// is preserved when non-zero (merges keep the original added time).
func (im *Importer) importEntry(
	col *collection.Collection,
	scratch string,
	entry ManifestEntry,
	destName string,
	typ artifact.Type,
	addedAt time.Time,
) error {
	src := filepath.Join(scratch, filepath.FromSlash(entry.Path))
	dst := im.collections.ArtifactPath(col, typ, destName)

	var copyErr error
	if typ == artifact.TypeSkill {
		copyErr = fileutil.CopyDir(src, dst)
	} else {
		copyErr = fileutil.CopyFile(src, dst)
	}
	if copyErr != nil {
		return fmt.Errorf("installing %s: %w", artifact.Key(destName, typ), copyErr)
	}

	hash, err := contentHash(dst, typ)
	if err != nil {
		return err
	}

	meta, err := artifact.ExtractMetadata(dst, typ)
	if err != nil {
		log.Debug().Err(err).Str("artifact", destName).Msg("No usable artifact metadata")
		meta = &artifact.Metadata{}
	}

	now := time.Now().UTC()
	if addedAt.IsZero() {
		addedAt = now
	}
	col.Add(artifact.Artifact{
		Name:        destName,
		Type:        typ,
		Version:     entry.Version,
		Description: meta.Description,
		Origin:      entry.Origin,
		Upstream:    entry.Upstream,
		Tags:        meta.Tags,
		Hash:        hash,
		AddedAt:     addedAt,
		UpdatedAt:   now,
	})
	return nil
}

// rollback restores the pre-import snapshot after a failed apply/persist.
func (im *Importer) rollback(result *ImportResult, col *collection.Collection, snap *snapshot.Snapshot) *ImportResult {
	im.report(PhaseRollingBack, "rolling back collection", LevelWarn)

	if snap == nil {
		result.addWarning("no snapshot available; collection state is unverified")
	} else if err := im.snapshots.Restore(snap, col.Path); err != nil {
		result.addError(errors.NewRollbackError(col.Name, snap.ID, err).Error())
		log.Error().Err(err).Str("collection", col.Name).Str("snapshot_id", snap.ID).
			Msg("Rollback failed; collection may be inconsistent")
	} else {
		result.addWarning(fmt.Sprintf("collection rolled back to snapshot %s", snap.ID))
	}

	return im.fail(result, "apply")
}

// fail finalizes a result after an aborting error.
func (im *Importer) fail(result *ImportResult, stage string) *ImportResult {
	result.Success = false
	im.tracker.Track(telemetry.EventImportFailed, map[string]interface{}{
		"stage":  stage,
		"errors": len(result.Errors),
	})
	return result
}

func (im *Importer) report(phase Phase, msg string, level EventLevel) {
	im.reporter.Report(ProgressEvent{Phase: phase, Message: msg, Level: level})
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func outcomeFor(r Resolution) Outcome {
	switch r {
	case ResolutionMerge:
		return OutcomeMerged
	case ResolutionFork:
		return OutcomeForked
	default:
		return OutcomeSkipped
	}
}

// isDowngrade reports whether incoming is a lower semantic version than
// existing. Unparsable versions never flag.
func isDowngrade(existing, incoming string) bool {
	e, i := canonicalVersion(existing), canonicalVersion(incoming)
	if e == "" || i == "" {
		return false
	}
	return semver.Compare(i, e) < 0
}

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
