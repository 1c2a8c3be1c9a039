package command

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/internal/tui"
)

// NewRestoreCmd creates the 'collection restore' command.
func NewRestoreCmd(f *cmdutils.Factory) *cobra.Command {
	var (
		collectionName string
		yes            bool
	)

	cmd := &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Restore a collection from a snapshot",
		Long: heredoc.Doc(`
			Replace the collection's current contents with a snapshot taken
			before an earlier import. Find snapshot ids with
			'sm collection snapshots'.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if collectionName == "" {
				collectionName = f.Config.DefaultCollection
			}

			snap, err := f.Snapshots().Get(collectionName, args[0])
			if err != nil {
				return err
			}

			if !yes {
				if !f.Terminal.CanPrompt() {
					return fmt.Errorf("restore overwrites the collection; pass --yes to confirm non-interactively")
				}
				confirmed, err := tui.ConfirmRestore(collectionName, snap.ID)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println(style.DimText.Render("restore cancelled"))
					return nil
				}
			}

			if err := f.Snapshots().Restore(snap, f.Collections().Path(collectionName)); err != nil {
				return err
			}
			fmt.Printf("%s restored collection %s from snapshot %s\n",
				style.SuccessIcon(), style.Bold.Render(collectionName), snap.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&collectionName, "collection", "c", "", "Collection to restore (defaults to the configured one)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
