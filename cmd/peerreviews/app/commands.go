package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/peerreviews/cmd/peerreviews/cmd/fetch"
	"github.com/agentstation/peerreviews/cmd/peerreviews/cmd/merge"
	"github.com/agentstation/peerreviews/cmd/peerreviews/cmd/serve"
	"github.com/agentstation/peerreviews/cmd/peerreviews/cmd/validate"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(merge.NewCommand(a, merge.Defaults{
		ManualPath: a.config.ManualPath,
		FeedURL:    a.config.FeedURL,
	}))
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a, serve.Settings{
		ManualPath:     a.config.ManualPath,
		AllowedOrigins: a.config.AllowedOrigins,
	}))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a, a.config.ManualPath))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("peerreviews %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
