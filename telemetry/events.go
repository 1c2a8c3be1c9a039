package telemetry

// Event names recorded by the import pipeline.
const (
	EventBundleValidated = "bundle_validated"
	EventBundleImported  = "bundle_imported"
	EventImportFailed    = "import_failed"

	EventArtifactImported = "artifact_imported"
	EventArtifactMerged   = "artifact_merged"
	EventArtifactForked   = "artifact_forked"
	EventArtifactSkipped  = "artifact_skipped"
)
