package command

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/signing"
	"github.com/skillmeat/skillmeat-cli/internal/style"
)

// NewSignCmd creates the 'bundle sign' command.
func NewSignCmd(f *cmdutils.Factory) *cobra.Command {
	var keyPath string

	cmd := &cobra.Command{
		Use:   "sign <bundle.zip>",
		Short: "Sign a bundle with an ed25519 key",
		Long: heredoc.Doc(`
			Write a detached signature next to the bundle (<bundle>.sig) using an
			OpenSSH ed25519 private key. Importers with the matching public key in
			their trusted signers file will see the bundle as signed.
		`),
		Example: heredoc.Doc(`
			sm bundle sign review-pack.zip --key ~/.ssh/id_ed25519
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sigPath, err := signing.Sign(args[0], keyPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s wrote %s\n", style.SuccessIcon(), style.Bold.Render(sigPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "Path to the ed25519 private key")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
