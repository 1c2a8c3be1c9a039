// Package tui provides the interactive prompts used by the CLI: conflict
// resolution choices and confirmations for destructive operations.
package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
	"github.com/skillmeat/skillmeat-cli/internal/bundle"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/util/common/errors"
)

// ConflictPrompter implements bundle.Prompter with huh forms. It is only
// constructed when the terminal can prompt.
type ConflictPrompter struct{}

// NewConflictPrompter returns a prompter backed by interactive forms.
func NewConflictPrompter() *ConflictPrompter {
	return &ConflictPrompter{}
}

// Choose asks the user how to resolve one conflict. The second return
// value is true when the answer should apply to all remaining conflicts.
func (p *ConflictPrompter) Choose(existing artifact.Artifact, incoming bundle.ManifestEntry) (bundle.Resolution, bool, error) {
	header := style.Warning.Render(fmt.Sprintf(
		"⚠  %s %s already exists in the collection",
		existing.Type,
		style.Bold.Render(existing.Name),
	))
	fmt.Println(header)
	fmt.Println(style.DimText.Render(fmt.Sprintf(
		"   installed: %s   incoming: %s",
		versionOrDash(existing.Version), versionOrDash(incoming.Version))))
	fmt.Println()

	var choice bundle.Resolution
	var applyAll bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bundle.Resolution]().
				Title(fmt.Sprintf("How should %q be resolved?", existing.Name)).
				Options(
					huh.NewOption("Merge - replace with the bundle version", bundle.ResolutionMerge),
					huh.NewOption("Fork - import under a new name", bundle.ResolutionFork),
					huh.NewOption("Skip - keep the installed version", bundle.ResolutionSkip),
				).
				Value(&choice),
			huh.NewConfirm().
				Title("Apply this choice to all remaining conflicts?").
				Affirmative("Yes, all").
				Negative("No, ask each time").
				Value(&applyAll),
		),
	)

	if err := form.Run(); err != nil {
		return "", false, fmt.Errorf("%w: %v", errors.ErrNoInput, err)
	}
	return choice, applyAll, nil
}

// ConfirmRestore shows a confirmation prompt before a snapshot restore
// overwrites the current collection tree.
func ConfirmRestore(collection, snapshotID string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Restore collection %q from snapshot %s?", collection, snapshotID)).
				Description("The current collection contents will be replaced.").
				Affirmative("Yes, restore").
				Negative("No, cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func versionOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
