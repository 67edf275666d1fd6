package agent

import "context"

// Message represents a single chat message (provider-agnostic).
type Message struct {
	Role       string     // "system", "user", "assistant", "tool"
	Content    string     // text content
	ToolCallID string     // for tool result messages
	ToolCalls  []ToolCall // for assistant messages requesting tool calls
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID        string // unique call ID
	Name      string // function name
	Arguments string // JSON-encoded arguments
}

// ToolDef describes a callable tool/function definition.
type ToolDef struct {
	Name        string // function name
	Description string // human-readable description
	Parameters  any    // JSON Schema object describing the parameters
}

// Response represents an LLM completion response.
type Response struct {
	Content   string     // text content (empty when tool calls are present)
	ToolCalls []ToolCall // tool calls requested by the model
	Usage     Usage      // token usage statistics
}

// Usage holds token usage statistics for one completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider is the generic LLM provider interface. Any client can
// implement this single method to drive the assistant runtime.
type Provider interface {
	Complete(ctx context.Context, model string, messages []Message, tools []ToolDef) (*Response, error)
}

// ProviderFunc adapts a plain function into a Provider, following the
// http.HandlerFunc convention.
type ProviderFunc func(ctx context.Context, model string, messages []Message, tools []ToolDef) (*Response, error)

// Complete implements the Provider interface.
func (f ProviderFunc) Complete(ctx context.Context, model string, messages []Message, tools []ToolDef) (*Response, error) {
	return f(ctx, model, messages, tools)
}
