package main

import (
	"fmt"

	"aide/internal/version"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root aide command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aide",
		Short:         "Personal assistant with a persistent memory",
		Long:          "aide is a conversational personal assistant.\nEvery session, message, note, research finding, and document it touches\nis archived in a local SQLite database.",
		Version:       fmt.Sprintf("aide %s", version.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newChatCmd(),
		newSessionsCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newNotesCmd(),
		newResearchCmd(),
		newDocsCmd(),
		newExportCmd(),
		newImportCmd(),
		newExportsCmd(),
	)

	return cmd
}
