package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/util/common/printer"
)

// NewListCmd creates the 'collection list' command. Without arguments it
// lists collections; with a name it lists that collection's artifacts.
func NewListCmd(f *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "list [name]",
		Short: "List collections, or the artifacts in one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := f.Collections()

			if len(args) == 0 {
				names, err := mgr.List()
				if err != nil {
					return err
				}
				if f.Terminal.ForceJSON {
					return printer.JSON(names)
				}
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					c, err := mgr.Load(name)
					if err != nil {
						return err
					}
					rows = append(rows, []string{name, fmt.Sprint(c.Count()), c.UpdatedAt.Format("2006-01-02 15:04")})
				}
				printer.Table([]string{"COLLECTION", "ARTIFACTS", "UPDATED"}, rows)
				return nil
			}

			c, err := mgr.Load(args[0])
			if err != nil {
				return err
			}
			if f.Terminal.ForceJSON {
				return printer.JSON(c)
			}

			fmt.Println(style.Subtitle.Render(c.Name))
			rows := make([][]string, 0, len(c.Artifacts))
			for _, a := range c.Artifacts {
				version := a.Version
				if version == "" {
					version = "-"
				}
				rows = append(rows, []string{a.Name, string(a.Type), version, a.UpdatedAt.Format("2006-01-02")})
			}
			printer.Table([]string{"ARTIFACT", "TYPE", "VERSION", "UPDATED"}, rows)
			return nil
		},
	}
}
