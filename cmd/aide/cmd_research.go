package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/research"
)

// formatResearchTable formats research findings as a tabular string.
func formatResearchTable(found []archive.Research) string {
	if len(found) == 0 {
		return "No research found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-40s %-8s %s\n", "ID", "QUERY", "SOURCES", "CREATED")
	for _, r := range found {
		var sources []string
		_ = json.Unmarshal([]byte(r.Sources), &sources)
		fmt.Fprintf(&b, "%-6d %-40s %-8d %s\n", r.ID, truncate(r.Query, 38), len(sources), r.CreatedAt)
	}
	return b.String()
}

// newResearchCmd creates the "aide research" parent command.
func newResearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Browse saved research findings",
	}

	cmd.AddCommand(newResearchListCmd())
	return cmd
}

// newResearchListCmd creates "aide research list".
func newResearchListCmd() *cobra.Command {
	var (
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List research findings",
		Long:  "List saved research findings newest-first, optionally for one session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return fmt.Errorf("research list: %w", err)
			}
			defer db.Close()

			found, err := research.NewStore(db, "").Recent(context.Background(), sessionID, limit)
			if err != nil {
				return fmt.Errorf("research list: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatResearchTable(found))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "only findings from this session")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of findings to list")
	return cmd
}
