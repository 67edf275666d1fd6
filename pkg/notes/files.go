package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeMarkdown renders a note as a markdown file in dir and returns
// its path. Filenames combine a timestamp with a sanitized title so
// externally browsed note directories stay readable.
func writeMarkdown(dir, title, content string, tags []string, createdAt string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create notes dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.md", time.Now().Format("20060102_150405"), safeTitle(title))
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(tags, ", "))
	}
	fmt.Fprintf(&b, "**Created:** %s\n\n---\n\n%s", createdAt, content)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write note file: %w", err)
	}
	return path, nil
}

// safeTitle maps a note title to a filesystem-safe slug, capped at 50
// characters.
func safeTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return '_'
		}
	}, title)
	if len(mapped) > 50 {
		mapped = mapped[:50]
	}
	if mapped == "" {
		mapped = "note"
	}
	return mapped
}

// parseMarkdown extracts a note title and body from a markdown file
// written by writeMarkdown or edited by hand. The first "# " heading
// becomes the title (falling back to the filename); everything after a
// "---" separator, or the whole remainder, becomes the content.
func parseMarkdown(path string, raw []byte) (title, content string) {
	text := string(raw)
	title = strings.TrimSuffix(filepath.Base(path), ".md")

	lines := strings.Split(text, "\n")
	body := lines
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			body = lines[i+1:]
			break
		}
	}

	rest := strings.Join(body, "\n")
	if _, after, ok := strings.Cut(rest, "\n---\n"); ok {
		rest = after
	}
	content = strings.TrimSpace(rest)
	return title, content
}
