package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/session"
)

// formatStats renders one session's totals.
func formatStats(sess archive.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s\n", sess.ID)
	fmt.Fprintf(&b, "  started     %s\n", sess.StartedAt)
	fmt.Fprintf(&b, "  last active %s\n", sess.LastActiveAt)
	fmt.Fprintf(&b, "  messages    %d\n", sess.MessageCount)
	fmt.Fprintf(&b, "  cost        $%.4f\n", sess.TotalCostUSD)
	return b.String()
}

// newStatsCmd creates the "aide stats" command.
func newStatsCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session totals",
		Long:  "Show a session's message count and cumulative cost.\nDefaults to the most recently active session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openStore()
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			defer db.Close()

			ctx := context.Background()
			id, err := sessionOrLast(ctx, db, sessionID)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			sess, err := session.NewStore(db).Get(ctx, id)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatStats(sess))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: most recent)")
	return cmd
}
