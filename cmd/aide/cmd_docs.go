package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/docs"
)

// formatDocsTable formats documents as a tabular string.
func formatDocsTable(found []archive.Document) string {
	if len(found) == 0 {
		return "No documents found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-30s %-8s %-40s %s\n", "ID", "FILENAME", "TYPE", "PATH", "CREATED")
	for _, d := range found {
		fmt.Fprintf(&b, "%-6d %-30s %-8s %-40s %s\n",
			d.ID, truncate(d.Filename, 28), d.FileType, truncate(d.FilePath, 38), d.CreatedAt)
	}
	return b.String()
}

// newDocsCmd creates the "aide docs" parent command.
func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Browse tracked documents",
	}

	cmd.AddCommand(newDocsListCmd())
	return cmd
}

// newDocsListCmd creates "aide docs list".
func newDocsListCmd() *cobra.Command {
	var (
		fileType  string
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Long:  "List tracked documents newest-first, optionally filtered by type or session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return fmt.Errorf("docs list: %w", err)
			}
			defer db.Close()

			found, err := docs.NewStore(db, "").List(context.Background(), docs.ListOpts{
				FileType:  fileType,
				SessionID: sessionID,
				Limit:     limit,
			})
			if err != nil {
				return fmt.Errorf("docs list: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatDocsTable(found))
			return nil
		},
	}

	cmd.Flags().StringVar(&fileType, "type", "", "only documents of this file type")
	cmd.Flags().StringVar(&sessionID, "session", "", "only documents from this session")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of documents to list")
	return cmd
}
