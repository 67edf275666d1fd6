package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aide/pkg/export"
)

// formatExportsTable formats backup files as a tabular string.
func formatExportsTable(files []export.FileInfo) string {
	if len(files) == 0 {
		return "No backups found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-12s %s\n", "NAME", "SIZE", "MODIFIED")
	for _, f := range files {
		fmt.Fprintf(&b, "%-40s %-12d %s\n", f.Name, f.Size, f.Modified.Format(time.RFC3339))
	}
	return b.String()
}

// newExportsCmd creates the "aide exports" command.
func newExportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List JSON backups",
		Long:  "List the backup files in the export directory, newest first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, paths, err := openStore()
			if err != nil {
				return fmt.Errorf("exports: %w", err)
			}
			defer db.Close()

			files, err := export.NewManager(db, paths.ExportDir).List()
			if err != nil {
				return fmt.Errorf("exports: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatExportsTable(files))
			return nil
		},
	}

	return cmd
}
