package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/session"
)

// formatSessionsTable formats sessions as a tabular string.
func formatSessionsTable(sessions []archive.Session) string {
	if len(sessions) == 0 {
		return "No sessions found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-26s %-10s %s\n", "ID", "LAST ACTIVE", "MESSAGES", "COST")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-38s %-26s %-10d $%.4f\n", s.ID, s.LastActiveAt, s.MessageCount, s.TotalCostUSD)
	}
	return b.String()
}

// newSessionsCmdWithStore creates "aide sessions" wired to a session.Store.
func newSessionsCmdWithStore(store *session.Store) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List past sessions",
		Long:  "List sessions newest-first with their message counts and cumulative cost.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := store.List(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("sessions: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSessionsTable(results))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions to list")
	return cmd
}

// newSessionsCmd creates the production "aide sessions" command.
func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List past sessions",
		Long:  "List sessions newest-first with their message counts and cumulative cost.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return fmt.Errorf("sessions: %w", err)
			}
			defer db.Close()

			results, err := session.NewStore(db).List(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("sessions: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSessionsTable(results))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions to list")
	return cmd
}

// sessionOrLast resolves an explicit session id, falling back to the
// most recently active session when id is empty.
func sessionOrLast(ctx context.Context, db *sql.DB, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	last, err := session.NewStore(db).LastSessionID(ctx)
	if err != nil {
		return "", err
	}
	if last == "" {
		return "", fmt.Errorf("no sessions recorded yet")
	}
	return last, nil
}
