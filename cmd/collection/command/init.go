package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	"github.com/skillmeat/skillmeat-cli/internal/style"
)

// NewInitCmd creates the 'collection init' command.
func NewInitCmd(f *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "init [name]",
		Short: "Create an empty collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := f.Config.DefaultCollection
			if len(args) == 1 {
				name = args[0]
			}

			c, err := f.Collections().Init(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s created collection %s at %s\n",
				style.SuccessIcon(), style.Bold.Render(c.Name), style.DimText.Render(c.Path))
			fmt.Println(style.Hint(fmt.Sprintf("import a bundle with 'sm bundle import <bundle.zip> -c %s'", c.Name)))
			return nil
		},
	}
}
