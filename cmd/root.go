package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage searches an issue tracker for existing fixes to a reported problem",
	Long: `Triage helps answer "has this bug already been solved?". Given a free-text
problem description, it searches the configured issue tracker for related
reports, mines resolved conversations for concrete fixes, ranks those fixes
against the reporter's environment, and drafts a new bug report when nothing
usable is found.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringP("repository", "r", "", "GitHub repository name (e.g., 'owner/repo'); overrides GITHUB_REPOSITORY")
	rootCmd.PersistentFlags().String("tracker", "github", "Tracker backend: 'github' or 'jira'")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fixCmd)
}
