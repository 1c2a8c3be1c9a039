package command

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/bundle"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/internal/tui"
	"github.com/skillmeat/skillmeat-cli/util/common/printer"
)

// NewImportCmd creates the 'bundle import' command.
func NewImportCmd(f *cmdutils.Factory) *cobra.Command {
	var (
		collectionName   string
		strategyFlag     string
		dryRun           bool
		force            bool
		expectedHash     string
		verifySignature  bool
		requireSignature bool
		exclude          []string
		forkSuffix       string
	)

	cmd := &cobra.Command{
		Use:   "import <bundle.zip>",
		Short: "Import a bundle into a collection",
		Long: heredoc.Doc(`
			Validate a bundle archive and import its artifacts into a collection.

			Conflicts with already-installed artifacts are settled by the chosen
			strategy: merge overwrites, fork imports under a new name, skip keeps
			the installed version, and interactive asks per conflict.

			The collection is snapshotted before anything is written; a failed
			import rolls back to that snapshot.
		`),
		Example: heredoc.Doc(`
			# Preview what an import would do
			sm bundle import review-pack.zip --dry-run

			# Import, keeping existing artifacts on conflict
			sm bundle import review-pack.zip --strategy skip

			# Import only signed bundles, excluding experimental artifacts
			sm bundle import review-pack.zip --require-signature --exclude 'exp-*'
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if collectionName == "" {
				collectionName = f.Config.DefaultCollection
			}
			if strategyFlag == "" {
				strategyFlag = f.Config.DefaultStrategy
			}
			strategy, err := bundle.ParseStrategyName(strategyFlag)
			if err != nil {
				return err
			}

			var prompter bundle.Prompter
			if strategy == bundle.StrategyInteractive {
				if !f.Terminal.CanPrompt() {
					return fmt.Errorf("interactive strategy requires a terminal; use --strategy merge|fork|skip")
				}
				prompter = tui.NewConflictPrompter()
			}

			var reporter bundle.Reporter = bundle.NopReporter{}
			if f.Terminal.IsTerminal && !f.Terminal.ForceJSON {
				reporter = phaseReporter{}
			}

			result := f.Importer(reporter).Import(cmd.Context(), args[0], bundle.Options{
				Collection:       collectionName,
				Strategy:         strategy,
				Prompter:         prompter,
				DryRun:           dryRun,
				Force:            force,
				ExpectedHash:     expectedHash,
				VerifySignature:  verifySignature,
				RequireSignature: requireSignature,
				Exclude:          exclude,
				ForkSuffix:       forkSuffix,
			})

			if f.Terminal.ForceJSON {
				if err := printer.JSON(result); err != nil {
					return err
				}
			} else {
				renderImportResult(result)
			}

			if !result.Success {
				return fmt.Errorf("import of %s failed", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&collectionName, "collection", "c", "", "Target collection (defaults to the configured one)")
	cmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "Conflict strategy: merge, fork, skip or interactive")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would happen without changing anything")
	cmd.Flags().BoolVar(&force, "force", false, "Import despite validation errors or an invalid signature")
	cmd.Flags().StringVar(&expectedHash, "expected-hash", "", "Expected SHA-256 of the bundle archive")
	cmd.Flags().BoolVar(&verifySignature, "verify-signature", true, "Verify the bundle's detached signature when present")
	cmd.Flags().BoolVar(&requireSignature, "require-signature", false, "Refuse bundles without a trusted signature")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip artifacts whose name matches a glob pattern (repeatable)")
	cmd.Flags().StringVar(&forkSuffix, "fork-suffix", "", "Name suffix for forked artifacts (default \"-imported\")")

	return cmd
}

// phaseReporter prints pipeline progress to the terminal.
type phaseReporter struct{}

func (phaseReporter) Report(e bundle.ProgressEvent) {
	switch e.Level {
	case bundle.LevelWarn:
		pterm.Warning.Println(e.Message)
	default:
		fmt.Println(style.DimText.Render("• " + e.Message))
	}
}

func renderImportResult(result *bundle.ImportResult) {
	fmt.Println()
	if result.Success {
		verb := "imported"
		if result.DryRun {
			verb = "would import"
		}
		fmt.Printf("%s %s bundle %s into collection %s\n",
			style.SuccessIcon(), verb,
			style.Bold.Render(result.BundleName),
			style.Bold.Render(result.Collection))
	} else {
		fmt.Printf("%s import failed\n", style.ErrorIcon())
	}

	if len(result.Artifacts) > 0 {
		rows := make([][]string, 0, len(result.Artifacts))
		for _, a := range result.Artifacts {
			name := a.Name
			if a.NewName != "" {
				name = a.Name + " → " + a.NewName
			}
			rows = append(rows, []string{name, string(a.Type), string(a.Outcome), a.Reason})
		}
		printer.Table([]string{"ARTIFACT", "TYPE", "OUTCOME", "REASON"}, rows)
	}

	fmt.Println(style.DimText.Render(fmt.Sprintf(
		"%d imported, %d merged, %d forked, %d skipped in %s",
		result.ImportedCount, result.MergedCount, result.ForkedCount,
		result.SkippedCount, result.Duration.Round(time.Millisecond))))

	for _, w := range result.Warnings {
		pterm.Warning.Println(w)
	}
	for _, e := range result.Errors {
		pterm.Error.Println(e)
	}
}
