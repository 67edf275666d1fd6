package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aide/pkg/archive"
	"aide/pkg/notes"
)

// formatNotesTable formats notes as a tabular string.
func formatNotesTable(found []archive.Note) string {
	if len(found) == 0 {
		return "No notes found.\n"
	}

	const maxContent = 60

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-30s %-62s %-20s %s\n", "ID", "TITLE", "CONTENT", "TAGS", "CREATED")
	for _, n := range found {
		fmt.Fprintf(&b, "%-6d %-30s %-62s %-20s %s\n",
			n.ID,
			truncate(n.Title, 28),
			truncate(n.Content, maxContent),
			strings.Join(notes.TagsFromJSON(n.Tags), ","),
			n.CreatedAt)
	}
	return b.String()
}

// openNotesStore opens the default database and wraps it in a
// standalone notes store (no active session).
func openNotesStore() (*notes.Store, func(), error) {
	db, paths, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return notes.NewStore(db, paths.NotesDir, ""), func() { _ = db.Close() }, nil
}

// newNotesCmd creates the "aide notes" parent command with subcommands.
func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Create, search, and sync notes",
		Long:  "Commands for the note store: database rows with markdown mirrors on disk.",
	}

	cmd.AddCommand(
		newNotesAddCmd(),
		newNotesSearchCmd(),
		newNotesListCmd(),
		newNotesSyncCmd(),
	)
	return cmd
}

// newNotesAddCmd creates "aide notes add".
func newNotesAddCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <title> <content>",
		Short: "Add a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openNotesStore()
			if err != nil {
				return fmt.Errorf("notes add: %w", err)
			}
			defer closeDB()

			n, err := store.Add(context.Background(), args[0], args[1], tags)
			if err != nil {
				return fmt.Errorf("notes add: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note %d saved: %s\n", n.ID, n.FilePath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag for the note (repeatable)")
	return cmd
}

// newNotesSearchCmd creates "aide notes search".
func newNotesSearchCmd() *cobra.Command {
	var (
		tags  []string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openNotesStore()
			if err != nil {
				return fmt.Errorf("notes search: %w", err)
			}
			defer closeDB()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			found, err := store.Search(context.Background(), query, tags, limit)
			if err != nil {
				return fmt.Errorf("notes search: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatNotesTable(found))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "only notes carrying this tag (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of notes to return")
	return cmd
}

// newNotesListCmd creates "aide notes list".
func newNotesListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeDB, err := openNotesStore()
			if err != nil {
				return fmt.Errorf("notes list: %w", err)
			}
			defer closeDB()

			found, err := store.Recent(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("notes list: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatNotesTable(found))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of notes to list")
	return cmd
}

// newNotesSyncCmd creates "aide notes sync". One-shot by default;
// --watch keeps running and imports markdown files as they appear.
func newNotesSyncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import markdown files from the notes directory",
		Long:  "Import notes-directory markdown files that have no database row yet.\nWith --watch the command keeps running and imports files as they change.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeDB, err := openNotesStore()
			if err != nil {
				return fmt.Errorf("notes sync: %w", err)
			}
			defer closeDB()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if watch {
				fmt.Fprintln(cmd.OutOrStdout(), "watching notes directory, Ctrl-C to stop")
				return store.Watch(ctx)
			}

			imported, err := store.Sync(ctx)
			if err != nil {
				return fmt.Errorf("notes sync: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d note(s)\n", imported)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching the directory for changes")
	return cmd
}
