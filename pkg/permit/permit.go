// Package permit implements the human-approval gate for tool
// invocations. Requested actions move through requested, prompted,
// then approved or denied; the assistant's own registered tools bypass
// the prompt, everything else needs an explicit decision, and ambiguity
// (no terminal, unreadable input) always denies.
package permit

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DeniedError reports a declined tool invocation. Denial is a normal,
// non-fatal outcome: the requested action does not proceed and the
// denial is reported back to the calling layer.
type DeniedError struct {
	ToolName string
	Reason   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.ToolName, e.Reason)
}

// lineEvent is one line (or terminal error) from the input stream.
type lineEvent struct {
	text string
	err  error
}

// LineReader owns an input stream and reads it line by line from a
// single goroutine, so every consumer of the stream goes through one
// scanner. A consumer that stops waiting (cancelled context) never
// strands an in-flight read: the line stays with the reader and is
// delivered to whoever asks next.
type LineReader struct {
	events chan lineEvent
}

// NewLineReader starts the reader goroutine over in. The goroutine
// exits when the stream ends or errors.
func NewLineReader(in io.Reader) *LineReader {
	lr := &LineReader{events: make(chan lineEvent)}
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lr.events <- lineEvent{text: sc.Text()}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		lr.events <- lineEvent{err: err}
		close(lr.events)
	}()
	return lr
}

// ReadLine returns the next input line, or an error once the stream is
// closed or the context is cancelled.
func (lr *LineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case ev, ok := <-lr.events:
		if !ok {
			return "", fmt.Errorf("input closed: %w", io.EOF)
		}
		if ev.err != nil {
			return "", fmt.Errorf("input closed: %w", ev.err)
		}
		return ev.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("interrupted: %w", ctx.Err())
	}
}

// Options configures a Gate.
type Options struct {
	// In is the prompt's input stream. Ignored when Lines is set.
	In io.Reader

	// Out is the prompt's output stream.
	Out io.Writer

	// Lines supplies an existing line reader, so the gate can share
	// the input stream with other consumers instead of competing for
	// reads on it.
	Lines *LineReader

	// Interactive reports whether the input is a terminal a human can
	// answer on. When false every prompt-requiring request is denied.
	Interactive bool

	// AutoApprove lists tool names that bypass the prompt: the
	// assistant's own registered tools.
	AutoApprove []string
}

// Gate prompts a human for approval of tool invocations.
type Gate struct {
	out         io.Writer
	lines       *LineReader
	interactive bool
	autoApprove map[string]bool

	// mu serializes prompts; one pending decision at a time.
	mu sync.Mutex
}

// New creates a Gate.
func New(opts Options) *Gate {
	g := &Gate{
		out:         opts.Out,
		lines:       opts.Lines,
		interactive: opts.Interactive,
		autoApprove: make(map[string]bool, len(opts.AutoApprove)),
	}
	if g.lines == nil && opts.In != nil {
		g.lines = NewLineReader(opts.In)
	}
	for _, name := range opts.AutoApprove {
		g.autoApprove[name] = true
	}
	return g
}

// Decide resolves one requested tool invocation. Registered tools are
// auto-approved. Everything else displays the pending action and blocks
// for an explicit y/n answer; a cancelled context, a closed input
// stream, or a non-interactive session all deny.
func (g *Gate) Decide(ctx context.Context, toolName, input string) error {
	if g.autoApprove[toolName] {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.interactive || g.lines == nil {
		return &DeniedError{ToolName: toolName, Reason: "no interactive terminal to approve on"}
	}

	fmt.Fprintf(g.out, "\n%s\n[permission] %s requested:\n  %s\n%s\n",
		strings.Repeat("=", 60), toolName, input, strings.Repeat("=", 60))

	for {
		fmt.Fprint(g.out, "Approve? (y/n): ")

		answer, err := g.lines.ReadLine(ctx)
		if err != nil {
			return &DeniedError{ToolName: toolName, Reason: err.Error()}
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return nil
		case "n", "no":
			return &DeniedError{ToolName: toolName, Reason: "user denied the request"}
		default:
			fmt.Fprintln(g.out, "please answer 'y' or 'n'")
		}
	}
}
