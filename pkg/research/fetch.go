package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxPageBytes caps how much of a fetched page is read.
const maxPageBytes = 2 << 20

// Page is the extracted text of one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher retrieves web pages for the research tools. It owns its HTTP
// client; response bodies are released on every exit path, success or
// failure, so an aborted request can never leak a connection.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Close releases idle connections held by the fetcher's client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// Fetch retrieves url and extracts its readable text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "aide-research/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused, then report.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return Page{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	title, text, err := extractText(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Page{}, fmt.Errorf("parse %s: %w", url, err)
	}
	return Page{URL: url, Title: title, Text: text}, nil
}

// extractText walks the HTML tree collecting visible text, skipping
// script and style subtrees.
func extractText(r io.Reader) (title, text string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, strings.TrimSpace(b.String()), nil
}
