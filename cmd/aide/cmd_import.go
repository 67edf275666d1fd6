package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aide/pkg/export"
)

// newImportCmd creates the "aide import" command.
func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <backup-file>",
		Short: "Import a JSON backup",
		Long:  "Restore a backup produced by export.\nRows whose ids already exist are skipped, so importing twice is safe.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, paths, err := openStore()
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			defer db.Close()

			counts, err := export.NewManager(db, paths.ExportDir).Import(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"imported %d new rows\n  sessions %d, messages %d, notes %d, research %d, documents %d\n",
				counts.Total(),
				counts.Sessions, counts.Messages, counts.Notes, counts.Research, counts.Documents)
			return nil
		},
	}

	return cmd
}
