package command

import (
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/util/common/printer"
)

// NewSnapshotsCmd creates the 'collection snapshots' command.
func NewSnapshotsCmd(f *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots [name]",
		Short: "List a collection's rollback snapshots, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := f.Config.DefaultCollection
			if len(args) == 1 {
				name = args[0]
			}

			snaps, err := f.Snapshots().List(name)
			if err != nil {
				return err
			}
			if f.Terminal.ForceJSON {
				return printer.JSON(snaps)
			}

			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Message})
			}
			printer.Table([]string{"SNAPSHOT", "CREATED", "MESSAGE"}, rows)
			return nil
		},
	}
}
