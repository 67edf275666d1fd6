// Package agent runs assistant turns against an LLM provider, streaming
// each observed unit of work as a tagged fragment so the caller can
// archive partial progress durably before the turn completes.
package agent

import (
	"encoding/json"
	"fmt"

	"aide/pkg/archive"
)

// FragmentKind tags one streamed unit of an assistant turn. The set is
// closed: dispatch happens on the tag, never on shape probing, so an
// unrecognized unit can't be silently dropped.
type FragmentKind string

// Fragment kinds.
const (
	FragmentText       FragmentKind = "text"
	FragmentToolUse    FragmentKind = "tool_use"
	FragmentToolResult FragmentKind = "tool_result"
	FragmentCostReport FragmentKind = "cost_report"
)

// Fragment is one streamed unit of an assistant turn.
type Fragment struct {
	Kind FragmentKind

	// FragmentText
	Text string

	// FragmentToolUse / FragmentToolResult
	ToolCallID string
	ToolName   string
	ToolInput  string // JSON-encoded arguments
	ToolOutput string

	// FragmentCostReport: cumulative session cost so far, in USD.
	// Reported once at end of turn; never an increment.
	CumulativeCostUSD float64
}

// toolEnvelope is the serialized form of tool fragments in the message
// archive, sufficient to reconstruct agent context on resume.
type toolEnvelope struct {
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	Input   string `json:"input,omitempty"`
	Content string `json:"content,omitempty"`
}

// ArchiveRole maps the fragment to its message-archive role. Cost
// reports are not archived as messages; calling ArchiveRole on one is a
// programming error.
func (f Fragment) ArchiveRole() string {
	switch f.Kind {
	case FragmentText:
		return archive.RoleAssistant
	case FragmentToolUse, FragmentToolResult:
		return archive.RoleTool
	default:
		return ""
	}
}

// ArchiveContent returns the content payload to persist for this
// fragment. Text fragments archive verbatim; tool fragments archive as
// a JSON envelope distinguishing invocation from result.
func (f Fragment) ArchiveContent() (string, error) {
	switch f.Kind {
	case FragmentText:
		return f.Text, nil
	case FragmentToolUse:
		b, err := json.Marshal(toolEnvelope{Type: "tool_use", Name: f.ToolName, Input: f.ToolInput})
		if err != nil {
			return "", fmt.Errorf("encode tool_use fragment: %w", err)
		}
		return string(b), nil
	case FragmentToolResult:
		b, err := json.Marshal(toolEnvelope{Type: "tool_result", Name: f.ToolName, Content: f.ToolOutput})
		if err != nil {
			return "", fmt.Errorf("encode tool_result fragment: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("fragment kind %q is not archivable", f.Kind)
	}
}

// Archivable reports whether this fragment produces a message row.
func (f Fragment) Archivable() bool {
	return f.Kind == FragmentText || f.Kind == FragmentToolUse || f.Kind == FragmentToolResult
}
