package command

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/signing"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/util/common/printer"
)

// NewInspectCmd creates the 'bundle inspect' command.
func NewInspectCmd(f *cmdutils.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <bundle.zip>",
		Short: "Show a bundle's manifest and signature status",
		Long: heredoc.Doc(`
			Print the bundle's metadata, its artifact list and whether it carries
			a trusted signature. The bundle is validated but not imported.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := f.Validator().Validate(args[0], "")
			if result.Manifest == nil {
				return fmt.Errorf("bundle %s has no readable manifest", args[0])
			}

			sig, err := f.Verifier().Verify(args[0])
			if err != nil {
				return err
			}

			if f.Terminal.ForceJSON {
				return printer.JSON(map[string]interface{}{
					"manifest":  result.Manifest,
					"hash":      result.BundleHash,
					"valid":     result.Valid(),
					"signature": sig,
				})
			}

			info := result.Manifest.Bundle
			fmt.Println(style.Title.Render(info.Name + " v" + info.Version))
			fmt.Println(style.DimText.Render("created " + info.CreatedAt + " by " + info.Creator))
			if info.License != "" {
				fmt.Println(style.DimText.Render("license " + info.License))
			}
			fmt.Println(style.DimText.Render("sha256: " + result.BundleHash))
			fmt.Println(renderSignature(sig))
			fmt.Println()

			rows := make([][]string, 0, len(result.Manifest.Artifacts))
			for _, a := range result.Manifest.Artifacts {
				rows = append(rows, []string{a.Name, a.Type, orDash(a.Version), a.Path})
			}
			printer.Table([]string{"ARTIFACT", "TYPE", "VERSION", "PATH"}, rows)

			if !result.Valid() {
				fmt.Println(style.Warning.Render(fmt.Sprintf(
					"%d validation errors; run 'sm bundle validate %s' for details",
					len(result.Errors()), args[0])))
			}
			return nil
		},
	}
	return cmd
}

func renderSignature(sig *signing.Result) string {
	switch sig.Status {
	case signing.StatusSigned:
		return style.Success.Render("signed by " + sig.Signer)
	case signing.StatusInvalid:
		return style.Error.Render("signature invalid or untrusted")
	default:
		return style.DimText.Render("unsigned")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
