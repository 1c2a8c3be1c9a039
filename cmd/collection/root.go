// Package collectioncmd groups the collection subcommands: init, list,
// snapshots and restore.
package collectioncmd

import (
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/cmd/collection/command"
)

func GetRootCmd(f *cmdutils.Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage artifact collections",
		Long:    `Commands to create and inspect collections and their snapshots.`,
	}
	rootCmd.AddCommand(command.NewInitCmd(f))
	rootCmd.AddCommand(command.NewListCmd(f))
	rootCmd.AddCommand(command.NewSnapshotsCmd(f))
	rootCmd.AddCommand(command.NewRestoreCmd(f))

	return rootCmd
}
