// sm is the SkillMeat CLI: it validates, inspects, signs and imports
// artifact bundles into local collections.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	bundlecmd "github.com/skillmeat/skillmeat-cli/cmd/bundle"
	"github.com/skillmeat/skillmeat-cli/cmd/cmdutils"
	collectioncmd "github.com/skillmeat/skillmeat-cli/cmd/collection"
	"github.com/skillmeat/skillmeat-cli/internal/config"
	"github.com/skillmeat/skillmeat-cli/internal/style"
	"github.com/skillmeat/skillmeat-cli/internal/terminal"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	var (
		verbose    bool
		noColor    bool
		jsonFlag   bool
		configPath string
	)

	factory := &cmdutils.Factory{}

	rootCmd := &cobra.Command{
		Use:           "sm",
		Short:         "SkillMeat artifact bundle manager",
		Long:          `sm manages collections of skills, commands and agents, and imports them from shareable bundle archives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			termInfo := terminal.Detect(noColor, jsonFlag)
			style.Init(termInfo.ColorEnabled)

			if verbose {
				log.Logger = log.Output(zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339,
					NoColor:    !termInfo.ColorEnabled,
				})
			} else {
				log.Logger = zerolog.Nop()
			}

			if configPath == "" {
				configPath = config.DefaultPath()
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			*factory = *cmdutils.NewFactory(cfg, termInfo)
			return nil
		},
	}

	// Accept snake_case flag spellings (--dry_run) alongside kebab-case.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colour output (also respects NO_COLOR env)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.skillmeat/config.yaml)")

	rootCmd.AddCommand(bundlecmd.GetRootCmd(factory))
	rootCmd.AddCommand(collectioncmd.GetRootCmd(factory))
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorIcon()+" "+err.Error())
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sm version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sm", Version)
		},
	}
}
