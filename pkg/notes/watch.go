package notes

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Sync mirrors markdown files from the notes directory into the
// database: any .md file without a matching file_path row is parsed and
// inserted. Returns the number of notes imported.
func (s *Store) Sync(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read notes dir: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		added, err := s.syncFile(ctx, filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return imported, err
		}
		if added {
			imported++
		}
	}
	return imported, nil
}

// syncFile imports one markdown file unless a row already tracks it.
func (s *Store) syncFile(ctx context.Context, path string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM notes WHERE file_path = ?", path).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check note %s: %w", path, err)
	}
	if n > 0 {
		return false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read note %s: %w", path, err)
	}
	title, content := parseMarkdown(path, raw)

	_, err = s.insert(ctx, archiveNote(title, content, path, s.sessionID))
	if err != nil {
		return false, err
	}
	return true, nil
}

// Watch runs Sync once, then mirrors new or changed markdown files into
// the database as filesystem events arrive, until ctx is cancelled.
// Events are debounced per burst to avoid re-importing a file for every
// write syscall an editor makes.
func (s *Store) Watch(ctx context.Context) error {
	if _, err := s.Sync(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	const debounce = 200 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			resetTimer(timer, debounce)

		case <-timer.C:
			if _, err := s.Sync(ctx); err != nil {
				log.Printf("notes watch: sync failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("notes watch: watcher error: %v", err)
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
