package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/session"
)

// formatHistory renders messages in chronological order.
func formatHistory(msgs []archive.Message) string {
	if len(msgs) == 0 {
		return "No messages found.\n"
	}

	var b strings.Builder
	for _, m := range msgs {
		content := m.Content
		if m.Role == archive.RoleTool {
			content = truncate(content, 100)
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp, m.Role, content)
	}
	return b.String()
}

// newHistoryCmd creates the "aide history" command.
func newHistoryCmd() *cobra.Command {
	var (
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a session's message archive",
		Long:  "Show the archived messages for a session, oldest first.\nDefaults to the most recently active session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			defer db.Close()

			ctx := context.Background()
			id, err := sessionOrLast(ctx, db, sessionID)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}

			msgs, err := session.NewStore(db).History(ctx, id, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHistory(msgs))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: most recent)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of messages to show")
	return cmd
}
