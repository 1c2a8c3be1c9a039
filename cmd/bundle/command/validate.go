package command

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/inhies/go-bytesize"
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/bundle"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/util/common/printer"
)

// NewValidateCmd creates the 'bundle validate' command.
func NewValidateCmd(f *cmdutils.Factory) *cobra.Command {
	var expectedHash string

	cmd := &cobra.Command{
		Use:   "validate <bundle.zip>",
		Short: "Validate a bundle without importing it",
		Long: heredoc.Doc(`
			Check a bundle archive for integrity, security and schema problems:
			ZIP structure, path traversal, size limits, zip-bomb heuristics and
			the bundle.toml manifest.

			Nothing is extracted to disk.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := f.Validator().Validate(args[0], expectedHash)

			if f.Terminal.ForceJSON {
				if err := printer.JSON(result); err != nil {
					return err
				}
			} else {
				renderValidation(args[0], result)
			}

			if !result.Valid() {
				return fmt.Errorf("bundle %s failed validation", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&expectedHash, "expected-hash", "", "Expected SHA-256 of the bundle archive")
	return cmd
}

func renderValidation(path string, result *bundle.ValidationResult) {
	if result.Valid() {
		fmt.Printf("%s %s is valid\n", style.SuccessIcon(), style.Bold.Render(path))
	} else {
		fmt.Printf("%s %s failed validation\n", style.ErrorIcon(), style.Bold.Render(path))
	}

	if result.BundleHash != "" {
		fmt.Println(style.DimText.Render("sha256: " + result.BundleHash))
	}
	if result.Manifest != nil {
		fmt.Println(style.DimText.Render(fmt.Sprintf(
			"bundle %s v%s, %d artifacts, %s uncompressed",
			result.Manifest.Bundle.Name, result.Manifest.Bundle.Version,
			result.ArtifactCount, bytesize.New(float64(result.TotalSizeBytes)))))
	}

	if len(result.Issues) > 0 {
		rows := make([][]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			rows = append(rows, []string{
				string(issue.Severity), string(issue.Category), issue.FilePath, issue.Message,
			})
		}
		printer.Table([]string{"SEVERITY", "CATEGORY", "FILE", "MESSAGE"}, rows)
	}
}
