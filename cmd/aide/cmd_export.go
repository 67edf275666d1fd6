package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aide/pkg/export"
)

// newExportCmd creates the "aide export" command.
func newExportCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database to a JSON backup",
		Long:  "Dump every table to a JSON file in the export directory.\nWithout --file the backup gets a timestamped name.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, paths, err := openStore()
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			defer db.Close()

			path, counts, err := export.NewManager(db, paths.ExportDir).Export(context.Background(), filename)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"exported %d rows to %s\n  sessions %d, messages %d, notes %d, research %d, documents %d\n",
				counts.Total(), path,
				counts.Sessions, counts.Messages, counts.Notes, counts.Research, counts.Documents)
			return nil
		},
	}

	cmd.Flags().StringVar(&filename, "file", "", "backup filename (default: timestamped)")
	return cmd
}
