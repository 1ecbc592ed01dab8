package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/scantower/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The config file is loaded and the logger attached to the command context
// before any subcommand runs; subcommands read the logger with
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Scantower reconciles scan results with dependency graphs",
		Long: `Scantower reads analyzer and scanner results of a repository, maps the
findings of every scanned source tree onto the packages that live in it and
reports licenses, copyrights and issues per package.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")

	// Register all subcommands
	root.AddCommand(c.reconcileCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.idCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
