package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"aide/internal/config"
	"aide/pkg/agent"
	"aide/pkg/archive"
	"aide/pkg/permit"
	"aide/pkg/session"
)

// errInterruptAbandoned reports a turn that ignored its cancellation
// past the interrupt timeout. The chat loop shuts down instead of
// interleaving terminal output and archive writes with the orphan.
var errInterruptAbandoned = errors.New("turn did not stop within the interrupt timeout")

const defaultSystemPrompt = `You are aide, a personal assistant with persistent memory.
You can save and search notes, fetch web pages, record research findings,
track documents, and back up your own data. Use your tools when they help;
answer directly when they don't. Be concise.`

// newChatCmd creates the "aide chat" command: the interactive loop.
func newChatCmd() *cobra.Command {
	var (
		resume    bool
		sessionID string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive assistant session",
		Long:  "Start an interactive chat session.\nWith --resume the most recent session continues where it left off;\n--session picks a specific one. Without --resume a new session always starts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Optional .env for OPENAI_API_KEY and friends.
			_ = godotenv.Load()

			db, paths, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg, err := loadConfig(paths)
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Model = model
			}

			apiKey := os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				return errors.New("OPENAI_API_KEY is not set (flag, env, or .env)")
			}

			return runChat(cmd, db, paths, cfg, agent.NewOpenAIProvider(apiKey), resume, sessionID)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "continue the previous session")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to resume (requires --resume)")
	cmd.Flags().StringVar(&model, "model", "", "override the configured chat model")

	return cmd
}

// resolveSession applies the resume rules: a session is resumed only
// when --resume was given; --session picks which one, otherwise the
// most recently active. A resume pointing at a vanished session falls
// back to a fresh one rather than failing the chat.
func resolveSession(ctx context.Context, store *session.Store, resume bool, sessionID string) (archive.Session, bool, error) {
	if resume && sessionID == "" {
		last, err := store.LastSessionID(ctx)
		if err != nil {
			return archive.Session{}, false, err
		}
		sessionID = last
	}

	sess, resumed, err := store.StartOrResume(ctx, resume, sessionID)
	var notFound *archive.SessionNotFoundError
	if errors.As(err, &notFound) {
		sess, err = store.Create(ctx)
		return sess, false, err
	}
	return sess, resumed, err
}

// runChat drives the interactive loop against the given provider.
func runChat(cmd *cobra.Command, db *sql.DB, paths *Paths, cfg config.Config, provider agent.Provider, resume bool, sessionID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	sessions := session.NewStore(db)
	sess, resumed, err := resolveSession(ctx, sessions, resume, sessionID)
	if err != nil {
		return err
	}

	fmt.Fprint(out, banner(sess.ID, resumed))
	if resumed {
		fmt.Fprintln(out, styleTool.Render(fmt.Sprintf(
			"so far: %d messages, $%.4f", sess.MessageCount, sess.TotalCostUSD)))
	}

	history, err := seedHistory(ctx, sessions, sess.ID, cfg.HistoryLimit)
	if err != nil {
		return err
	}

	ts := newToolset(db, paths, cfg, sess.ID)
	defer ts.Close()

	// One owner for the input stream: the REPL and the permission gate
	// take turns reading lines from it instead of competing scanners.
	lines := permit.NewLineReader(cmd.InOrStdin())

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	gate := permit.New(permit.Options{
		Lines:       lines,
		Out:         out,
		Interactive: interactive,
		AutoApprove: ts.Names(),
	})

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	rt := agent.New(agent.Config{
		Provider:        provider,
		Model:           cfg.Model,
		SystemPrompt:    systemPrompt,
		Tools:           ts.Tools(),
		Gate:            gate,
		Pricing:         pricingTable(cfg),
		StartingCostUSD: sess.TotalCostUSD,
	})

	reconciler := session.NewReconciler(sessions)
	interruptTimeout := time.Duration(cfg.InterruptTimeoutSecs) * time.Second

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := lines.ReadLine(ctx)
		if err != nil {
			fmt.Fprintln(out, "\nbye")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := handleSlash(ctx, out, sessions, sess.ID, rt, input)
			if err != nil {
				fmt.Fprintln(out, styleErr.Render(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		history, err = runTurn(ctx, out, sessions, reconciler, rt, sess.ID, history, input, sigCh, interruptTimeout)
		if errors.Is(err, errInterruptAbandoned) {
			// The orphaned turn could still write to the terminal and
			// the archive; stop sharing them with it.
			return err
		}
		if err != nil {
			fmt.Fprintln(out, styleErr.Render("turn failed: "+err.Error()))
		}
	}
}

// seedHistory rebuilds the conversation context from the archive. Only
// user and assistant text rows seed the model; archived tool envelopes
// are a durability record, not replayable context.
func seedHistory(ctx context.Context, store *session.Store, sessionID string, limit int) ([]agent.Message, error) {
	rows, err := store.History(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}

	var msgs []agent.Message
	for _, m := range rows {
		if m.Role != archive.RoleUser && m.Role != archive.RoleAssistant {
			continue
		}
		msgs = append(msgs, agent.Message{Role: m.Role, Content: m.Content})
	}
	return msgs, nil
}

// runTurn executes one exchange: the user message and every fragment the
// runtime emits are archived the moment they arrive, and the session
// totals are reconciled exactly once when the turn completes. A SIGINT
// during the turn cancels it within the interrupt timeout.
func runTurn(ctx context.Context, out io.Writer, sessions *session.Store, reconciler *session.Reconciler,
	rt *agent.Runtime, sessionID string, history []agent.Message, input string,
	sigCh <-chan os.Signal, interruptTimeout time.Duration,
) ([]agent.Message, error) {
	if _, err := sessions.Append(ctx, sessionID, archive.RoleUser, input); err != nil {
		return history, err
	}

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reported float64
	emit := func(f agent.Fragment) error {
		renderFragment(out, f)
		if f.Kind == agent.FragmentCostReport {
			reported = f.CumulativeCostUSD
			return nil
		}
		if !f.Archivable() {
			return nil
		}
		content, err := f.ArchiveContent()
		if err != nil {
			return err
		}
		_, err = sessions.Append(ctx, sessionID, f.ArchiveRole(), content)
		return err
	}

	type turnResult struct {
		history []agent.Message
		err     error
	}
	done := make(chan turnResult, 1)
	doneSignal := make(chan struct{})
	go func() {
		h, err := rt.Turn(turnCtx, history, input, emit)
		done <- turnResult{history: h, err: err}
		close(doneSignal)
	}()

	var res turnResult
	select {
	case res = <-done:
	case <-sigCh:
		fmt.Fprintln(out, styleErr.Render("\ninterrupted"))
		if !permit.BoundedInterrupt(cancel, doneSignal, interruptTimeout) {
			return history, errInterruptAbandoned
		}
		res = <-done
	}

	if res.err != nil {
		// Fragments already archived stay; totals are not advanced for
		// an incomplete turn.
		return res.history, res.err
	}

	delta, err := reconciler.CompleteTurn(ctx, sessionID, reported)
	if err != nil {
		return res.history, err
	}
	fmt.Fprintln(out, styleCost.Render(fmt.Sprintf("[turn $%.4f, session $%.4f]", delta, reported)))
	return res.history, nil
}

// renderFragment prints one streamed fragment to the terminal.
func renderFragment(out io.Writer, f agent.Fragment) {
	switch f.Kind {
	case agent.FragmentText:
		fmt.Fprintln(out, styleAssistant.Render(f.Text))
	case agent.FragmentToolUse:
		fmt.Fprintln(out, styleTool.Render(fmt.Sprintf("[tool] %s %s", f.ToolName, truncate(f.ToolInput, 100))))
	case agent.FragmentToolResult:
		fmt.Fprintln(out, styleTool.Render(fmt.Sprintf("[tool] %s done: %s", f.ToolName, truncate(f.ToolOutput, 100))))
	case agent.FragmentCostReport:
		// Rendered by the turn summary line.
	}
}

// handleSlash processes a slash command. Returns true when the loop
// should exit.
func handleSlash(ctx context.Context, out io.Writer, sessions *session.Store, sessionID string, rt *agent.Runtime, input string) (bool, error) {
	switch strings.Fields(input)[0] {
	case "/exit", "/quit":
		fmt.Fprintln(out, "bye")
		return true, nil
	case "/help":
		fmt.Fprintln(out, "commands:\n  /stats  session totals\n  /clear  clear the screen\n  /exit   leave the chat")
		return false, nil
	case "/stats":
		sess, err := sessions.Get(ctx, sessionID)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "session %s\n  started    %s\n  last seen  %s\n  messages   %d\n  cost       $%.4f (runtime $%.4f)\n",
			sess.ID, sess.StartedAt, sess.LastActiveAt, sess.MessageCount, sess.TotalCostUSD, rt.CumulativeCostUSD())
		return false, nil
	case "/clear":
		fmt.Fprint(out, "\033[2J\033[H")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q, try /help", input)
	}
}

// pricingTable layers config pricing overrides onto the defaults.
func pricingTable(cfg config.Config) agent.PriceTable {
	table := agent.DefaultPriceTable()
	for prefix, p := range cfg.Pricing {
		table[prefix] = agent.Price{
			PromptUSDPerMTok:     p.PromptUSDPerMTok,
			CompletionUSDPerMTok: p.CompletionUSDPerMTok,
		}
	}
	return table
}
