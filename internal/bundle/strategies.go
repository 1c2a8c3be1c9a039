package bundle

import (
	"fmt"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
	"github.com/skillmeat/skillmeat-cli/internal/collection"
	"github.com/skillmeat/skillmeat-cli/util/common/errors"
)

// Resolution is how a single (name, type) collision is settled.
type Resolution string

const (
	// ResolutionMerge overwrites the existing artifact in place.
	ResolutionMerge Resolution = "merge"
	// ResolutionFork imports the incoming artifact under a new name.
	ResolutionFork Resolution = "fork"
	// ResolutionSkip keeps the existing artifact and drops the incoming one.
	ResolutionSkip Resolution = "skip"
)

// ConflictDecision is the settled outcome for one conflicting artifact.
type ConflictDecision struct {
	ArtifactName string
	ArtifactType artifact.Type
	Resolution   Resolution
	// NewName is set only for fork decisions.
	NewName string
	Reason  string
}

// Conflict pairs an existing artifact with the incoming manifest entry
// that collides with it.
type Conflict struct {
	Existing artifact.Artifact
	Incoming ManifestEntry
}

// Strategy decides how to resolve one conflict. The collection is passed
// so strategies can probe live state (fork name collisions); they must
// never mutate it.
type Strategy interface {
	Resolve(conflict Conflict, col *collection.Collection) (ConflictDecision, error)
}

// StrategyName selects a strategy. The set is closed; ParseStrategyName
// rejects anything else.
type StrategyName string

const (
	StrategyMerge       StrategyName = "merge"
	StrategyFork        StrategyName = "fork"
	StrategySkip        StrategyName = "skip"
	StrategyInteractive StrategyName = "interactive"
)

// ParseStrategyName converts a string flag value into a StrategyName.
func ParseStrategyName(s string) (StrategyName, error) {
	switch StrategyName(s) {
	case StrategyMerge, StrategyFork, StrategySkip, StrategyInteractive:
		return StrategyName(s), nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q (must be one of merge, fork, skip, interactive): %w",
		s, errors.ErrInvalidArgument)
}

// DefaultForkSuffix is appended to an artifact's name when forking.
const DefaultForkSuffix = "-imported"

// Prompter asks the operator to settle one conflict. Implementations live
// in the presentation layer; returning an error (including ErrNoInput when
// no terminal is available) aborts the import rather than defaulting.
type Prompter interface {
	// Choose returns the selected resolution and whether it should be
	// applied to all remaining conflicts in this import.
	Choose(existing artifact.Artifact, incoming ManifestEntry) (Resolution, bool, error)
}

// ForName builds the strategy for a parsed name. Interactive requires a
// prompter.
func ForName(name StrategyName, prompter Prompter, forkSuffix string) (Strategy, error) {
	if forkSuffix == "" {
		forkSuffix = DefaultForkSuffix
	}
	switch name {
	case StrategyMerge:
		return MergeStrategy{}, nil
	case StrategyFork:
		return NewForkStrategy(forkSuffix), nil
	case StrategySkip:
		return SkipStrategy{}, nil
	case StrategyInteractive:
		if prompter == nil {
			return nil, fmt.Errorf("interactive strategy requires a prompter: %w", errors.ErrNoInput)
		}
		return NewInteractiveStrategy(prompter, forkSuffix), nil
	}
	return nil, fmt.Errorf("unknown conflict strategy %q: %w", name, errors.ErrInvalidArgument)
}

// MergeStrategy always overwrites the existing artifact.
type MergeStrategy struct{}

func (MergeStrategy) Resolve(conflict Conflict, _ *collection.Collection) (ConflictDecision, error) {
	return ConflictDecision{
		ArtifactName: conflict.Existing.Name,
		ArtifactType: conflict.Existing.Type,
		Resolution:   ResolutionMerge,
		Reason:       "merge strategy: overwrite existing artifact",
	}, nil
}

// SkipStrategy always keeps the existing artifact.
type SkipStrategy struct{}

func (SkipStrategy) Resolve(conflict Conflict, _ *collection.Collection) (ConflictDecision, error) {
	return ConflictDecision{
		ArtifactName: conflict.Existing.Name,
		ArtifactType: conflict.Existing.Type,
		Resolution:   ResolutionSkip,
		Reason:       "skip strategy: existing artifact kept",
	}, nil
}

// ForkStrategy imports under a new name, probing the live collection and
// the names it already handed out this batch until a free one is found.
type ForkStrategy struct {
	suffix string
	taken  map[string]bool
}

// NewForkStrategy creates a fork strategy with the given name suffix.
func NewForkStrategy(suffix string) *ForkStrategy {
	if suffix == "" {
		suffix = DefaultForkSuffix
	}
	return &ForkStrategy{suffix: suffix, taken: make(map[string]bool)}
}

func (s *ForkStrategy) Resolve(conflict Conflict, col *collection.Collection) (ConflictDecision, error) {
	newName := s.freeName(conflict.Existing.Name, conflict.Existing.Type, col)
	return ConflictDecision{
		ArtifactName: conflict.Existing.Name,
		ArtifactType: conflict.Existing.Type,
		Resolution:   ResolutionFork,
		NewName:      newName,
		Reason:       fmt.Sprintf("fork strategy: imported as %s", newName),
	}, nil
}

func (s *ForkStrategy) freeName(name string, typ artifact.Type, col *collection.Collection) string {
	base := name + s.suffix
	candidate := base
	for i := 1; s.inUse(candidate, typ, col); i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	s.taken[artifact.Key(candidate, typ)] = true
	return candidate
}

func (s *ForkStrategy) inUse(name string, typ artifact.Type, col *collection.Collection) bool {
	if s.taken[artifact.Key(name, typ)] {
		return true
	}
	return col != nil && col.Exists(name, typ)
}

// InteractiveStrategy prompts the operator per conflict, optionally
// applying one answer to every remaining conflict. Fork choices reuse the
// fork strategy's name generation.
type InteractiveStrategy struct {
	prompter Prompter
	fork     *ForkStrategy
	applyAll *Resolution
}

// NewInteractiveStrategy creates an interactive strategy backed by the
// given prompter.
func NewInteractiveStrategy(prompter Prompter, forkSuffix string) *InteractiveStrategy {
	return &InteractiveStrategy{
		prompter: prompter,
		fork:     NewForkStrategy(forkSuffix),
	}
}

func (s *InteractiveStrategy) Resolve(conflict Conflict, col *collection.Collection) (ConflictDecision, error) {
	var choice Resolution
	if s.applyAll != nil {
		choice = *s.applyAll
	} else {
		selected, applyAll, err := s.prompter.Choose(conflict.Existing, conflict.Incoming)
		if err != nil {
			return ConflictDecision{}, fmt.Errorf("conflict prompt for %s: %w",
				conflict.Existing.Key(), err)
		}
		choice = selected
		if applyAll {
			s.applyAll = &selected
		}
	}

	switch choice {
	case ResolutionMerge:
		return MergeStrategy{}.Resolve(conflict, col)
	case ResolutionFork:
		return s.fork.Resolve(conflict, col)
	case ResolutionSkip:
		return SkipStrategy{}.Resolve(conflict, col)
	}
	return ConflictDecision{}, fmt.Errorf("prompter returned unknown resolution %q: %w",
		choice, errors.ErrInvalidArgument)
}
