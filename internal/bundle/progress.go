package bundle

// Phase names one stage of the import pipeline, in execution order.
type Phase string

const (
	PhaseValidating         Phase = "validating"
	PhaseVerifyingSignature Phase = "verifying_signature"
	PhaseLoadingCollection  Phase = "loading_collection"
	PhaseExtracting         Phase = "extracting"
	PhaseDetectingConflicts Phase = "detecting_conflicts"
	PhaseResolvingConflicts Phase = "resolving_conflicts"
	PhaseSnapshotting       Phase = "snapshotting"
	PhaseImporting          Phase = "importing"
	PhasePersisting         Phase = "persisting"
	PhaseRollingBack        Phase = "rolling_back"
	PhaseDone               Phase = "done"
)

// EventLevel distinguishes informational progress from warnings surfaced
// mid-import.
type EventLevel string

const (
	LevelInfo EventLevel = "info"
	LevelWarn EventLevel = "warn"
)

// ProgressEvent is one status update emitted while an import runs.
type ProgressEvent struct {
	Phase   Phase
	Message string
	Level   EventLevel
}

// Reporter receives progress events. Implementations must be cheap; they
// run inline with the import.
type Reporter interface {
	Report(e ProgressEvent)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(ProgressEvent) {}
