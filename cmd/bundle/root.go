// Package bundlecmd groups the bundle subcommands: import, validate,
// inspect and sign.
package bundlecmd

import (
	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/bundle/command"
	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
)

func GetRootCmd(f *cmdutils.Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bundle",
		Aliases: []string{"b"},
		Short:   "Work with artifact bundles",
		Long:    `Commands to validate, inspect, sign and import artifact bundles.`,
	}
	rootCmd.AddCommand(command.NewImportCmd(f))
	rootCmd.AddCommand(command.NewValidateCmd(f))
	rootCmd.AddCommand(command.NewInspectCmd(f))
	rootCmd.AddCommand(command.NewSignCmd(f))

	return rootCmd
}
