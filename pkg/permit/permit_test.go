package permit_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"aide/pkg/permit"
)

// hangingReader returns a reader that blocks forever, plus the write
// end so the pipe stays open for the duration of the test.
func hangingReader() (io.Reader, io.Closer) {
	r, w := io.Pipe()
	return r, w
}

func TestAutoApproveBypassesPrompt(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	gate := permit.New(permit.Options{
		Out:         &out,
		Interactive: false, // would deny anything that prompts
		AutoApprove: []string{"create_note", "fetch_url"},
	})

	if err := gate.Decide(context.Background(), "create_note", `{"title":"x"}`); err != nil {
		t.Fatalf("registered tool should be auto-approved: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("auto-approval must not prompt, wrote %q", out.String())
	}
}

func TestPromptApproval(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	gate := permit.New(permit.Options{
		In:          strings.NewReader("y\n"),
		Out:         &out,
		Interactive: true,
	})

	if err := gate.Decide(context.Background(), "run_command", `{"command":"ls"}`); err != nil {
		t.Fatalf("expected approval: %v", err)
	}
	if !strings.Contains(out.String(), "run_command") || !strings.Contains(out.String(), "ls") {
		t.Errorf("prompt must display the pending action, got %q", out.String())
	}
}

func TestPromptDenial(t *testing.T) {
	t.Parallel()

	gate := permit.New(permit.Options{
		In:          strings.NewReader("n\n"),
		Out:         &strings.Builder{},
		Interactive: true,
	})

	err := gate.Decide(context.Background(), "run_command", `{"command":"rm -rf /"}`)
	var denied *permit.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.ToolName != "run_command" {
		t.Errorf("expected tool name in denial, got %q", denied.ToolName)
	}
}

func TestPromptRetriesOnGarbage(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	gate := permit.New(permit.Options{
		In:          strings.NewReader("maybe\nwhat\ny\n"),
		Out:         &out,
		Interactive: true,
	})

	if err := gate.Decide(context.Background(), "run_command", "{}"); err != nil {
		t.Fatalf("expected eventual approval: %v", err)
	}
	if got := strings.Count(out.String(), "Approve? (y/n):"); got != 3 {
		t.Errorf("expected 3 prompts, got %d", got)
	}
}

func TestNonInteractiveDenies(t *testing.T) {
	t.Parallel()

	gate := permit.New(permit.Options{
		In:          strings.NewReader("y\n"), // readable, but not a terminal
		Out:         &strings.Builder{},
		Interactive: false,
	})

	err := gate.Decide(context.Background(), "run_command", "{}")
	var denied *permit.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("non-interactive sessions must deny, got %v", err)
	}
}

func TestClosedInputDenies(t *testing.T) {
	t.Parallel()

	gate := permit.New(permit.Options{
		In:          strings.NewReader(""), // immediate EOF
		Out:         &strings.Builder{},
		Interactive: true,
	})

	err := gate.Decide(context.Background(), "run_command", "{}")
	var denied *permit.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("EOF must deny, not allow, got %v", err)
	}
}

func TestInterruptUnblocksPendingPrompt(t *testing.T) {
	t.Parallel()

	// A reader that never produces a line: the prompt hangs until the
	// context is cancelled.
	hung, _ := hangingReader()
	gate := permit.New(permit.Options{
		In:          hung,
		Out:         &strings.Builder{},
		Interactive: true,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var decideErr error
	go func() {
		defer close(done)
		decideErr = gate.Decide(ctx, "run_command", "{}")
	}()

	if !permit.BoundedInterrupt(cancel, done, 2*time.Second) {
		t.Fatal("interrupt did not complete within the bound")
	}

	var denied *permit.DeniedError
	if !errors.As(decideErr, &denied) {
		t.Fatalf("interrupted prompt must deny, got %v", decideErr)
	}
}

func TestApprovalAfterInterruptedPrompt(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	var out strings.Builder
	gate := permit.New(permit.Options{
		In:          r,
		Out:         &out,
		Interactive: true,
	})

	// First prompt hangs with no answer; interrupt it.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var firstErr error
	go func() {
		defer close(done)
		firstErr = gate.Decide(ctx, "run_command", "{}")
	}()

	if !permit.BoundedInterrupt(cancel, done, 2*time.Second) {
		t.Fatal("interrupt did not complete within the bound")
	}
	var denied *permit.DeniedError
	if !errors.As(firstErr, &denied) {
		t.Fatalf("interrupted prompt must deny, got %v", firstErr)
	}

	// The answer typed for the next prompt must reach that prompt, not
	// vanish into leftover read state from the interrupted one.
	go func() { _, _ = w.Write([]byte("y\n")) }()

	if err := gate.Decide(context.Background(), "run_command", "{}"); err != nil {
		t.Fatalf("second prompt must see the approval: %v", err)
	}
}

func TestGateSharesLineReader(t *testing.T) {
	t.Parallel()

	lines := permit.NewLineReader(strings.NewReader("hello world\ny\n"))

	// Another consumer takes the first line.
	got, err := lines.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("ReadLine = %q", got)
	}

	// The gate, sharing the reader, sees only the remaining input.
	gate := permit.New(permit.Options{
		Lines:       lines,
		Out:         &strings.Builder{},
		Interactive: true,
	})
	if err := gate.Decide(context.Background(), "run_command", "{}"); err != nil {
		t.Fatalf("expected approval from shared reader: %v", err)
	}
}

func TestBoundedInterruptTimesOut(t *testing.T) {
	t.Parallel()

	cancelled := false
	never := make(chan struct{}) // work that never acknowledges

	start := time.Now()
	ok := permit.BoundedInterrupt(func() { cancelled = true }, never, 50*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Error("expected timeout")
	}
	if !cancelled {
		t.Error("cancel must still have been invoked")
	}
	if elapsed > time.Second {
		t.Errorf("interrupt must return promptly after the bound, took %v", elapsed)
	}
}
