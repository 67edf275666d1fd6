package agent

import (
	"context"
	"fmt"
)

// Tool is a registered assistant tool: a definition the model sees plus
// the function invoked when the model calls it.
type Tool struct {
	Def    ToolDef
	Invoke func(ctx context.Context, args string) (string, error)
}

// Gate decides whether a requested tool invocation may proceed. A nil
// return approves; any error denies. There is no default-allow on
// ambiguity. The denial is reported back to the model as the tool
// result, never executed.
type Gate interface {
	Decide(ctx context.Context, toolName, input string) error
}

// allowAll approves everything. Used when no gate is configured (tests).
type allowAll struct{}

func (allowAll) Decide(context.Context, string, string) error { return nil }

// Config assembles a Runtime.
type Config struct {
	Provider     Provider
	Model        string
	SystemPrompt string
	Tools        []Tool
	Gate         Gate
	Pricing      PriceTable

	// StartingCostUSD seeds the cumulative figure when resuming a
	// session, so cost reports stay scoped to the whole session.
	StartingCostUSD float64

	// MaxToolRounds bounds the provider-call loop within one turn.
	// Zero means the default of 8.
	MaxToolRounds int
}

// Runtime executes assistant turns: a tool-call loop over the provider
// that emits every observed unit of work as a Fragment, in arrival
// order, before the next unit is processed. Cost is reported once per
// turn as a cumulative figure via a final cost_report fragment.
type Runtime struct {
	provider      Provider
	model         string
	system        string
	tools         map[string]Tool
	defs          []ToolDef
	gate          Gate
	pricing       PriceTable
	cumulativeUSD float64
	maxToolRounds int
}

// New creates a Runtime from cfg.
func New(cfg Config) *Runtime {
	rt := &Runtime{
		provider:      cfg.Provider,
		model:         cfg.Model,
		system:        cfg.SystemPrompt,
		tools:         make(map[string]Tool, len(cfg.Tools)),
		gate:          cfg.Gate,
		pricing:       cfg.Pricing,
		cumulativeUSD: cfg.StartingCostUSD,
		maxToolRounds: cfg.MaxToolRounds,
	}
	if rt.gate == nil {
		rt.gate = allowAll{}
	}
	if rt.pricing == nil {
		rt.pricing = DefaultPriceTable()
	}
	if rt.maxToolRounds <= 0 {
		rt.maxToolRounds = 8
	}
	for _, t := range cfg.Tools {
		rt.tools[t.Def.Name] = t
		rt.defs = append(rt.defs, t.Def)
	}
	return rt
}

// ToolNames returns the names of all registered tools.
func (rt *Runtime) ToolNames() []string {
	names := make([]string, 0, len(rt.defs))
	for _, d := range rt.defs {
		names = append(names, d.Name)
	}
	return names
}

// CumulativeCostUSD returns the session-scoped cumulative cost so far.
func (rt *Runtime) CumulativeCostUSD() float64 {
	return rt.cumulativeUSD
}

// Turn runs one user/assistant exchange. history is the prior
// conversation (without the system prompt); userInput is the new user
// message. Every fragment is passed to emit before the turn advances,
// so partial progress is durable even if a later provider call fails.
// The final fragment of a successful turn is always a cost_report
// carrying the cumulative session cost.
//
// Returns the updated conversation history. On error, fragments already
// emitted remain valid; the turn is simply not completed.
func (rt *Runtime) Turn(ctx context.Context, history []Message, userInput string, emit func(Fragment) error) ([]Message, error) {
	msgs := append(history, Message{Role: "user", Content: userInput})

	for round := 0; round < rt.maxToolRounds; round++ {
		resp, err := rt.provider.Complete(ctx, rt.model, rt.withSystem(msgs), rt.defs)
		if err != nil {
			return msgs, fmt.Errorf("provider: %w", err)
		}
		rt.cumulativeUSD += rt.pricing.Cost(rt.model, resp.Usage)

		if resp.Content != "" {
			if err := emit(Fragment{Kind: FragmentText, Text: resp.Content}); err != nil {
				return msgs, err
			}
		}

		msgs = append(msgs, Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			break
		}

		for _, tc := range resp.ToolCalls {
			if err := emit(Fragment{
				Kind:       FragmentToolUse,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				ToolInput:  tc.Arguments,
			}); err != nil {
				return msgs, err
			}

			result := rt.invoke(ctx, tc)

			if err := emit(Fragment{
				Kind:       FragmentToolResult,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				ToolOutput: result,
			}); err != nil {
				return msgs, err
			}

			msgs = append(msgs, Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				Content:    result,
			})
		}
	}

	if err := emit(Fragment{Kind: FragmentCostReport, CumulativeCostUSD: rt.cumulativeUSD}); err != nil {
		return msgs, err
	}
	return msgs, nil
}

// invoke gates and executes one tool call, always producing a result
// string for the model. Denials and tool failures are normal outcomes
// reported back as results, not errors that abort the turn.
func (rt *Runtime) invoke(ctx context.Context, tc ToolCall) string {
	tool, ok := rt.tools[tc.Name]
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", tc.Name)
	}

	if err := rt.gate.Decide(ctx, tc.Name, tc.Arguments); err != nil {
		return fmt.Sprintf("permission denied: %v", err)
	}

	out, err := tool.Invoke(ctx, tc.Arguments)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}

// withSystem prepends the system prompt, when set, for a provider call.
func (rt *Runtime) withSystem(msgs []Message) []Message {
	if rt.system == "" {
		return msgs
	}
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Message{Role: "system", Content: rt.system})
	return append(out, msgs...)
}
