package kernel

import (
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/core/response"
)

// Outcome classifies how a loop invocation ended. Callers branch on the
// variant, not on sentinel strings in the response text.
type Outcome int

const (
	// OutcomeCompleted: the model produced a final text answer.
	OutcomeCompleted Outcome = iota
	// OutcomeBudgetExhausted: the round budget ran out with no final answer.
	OutcomeBudgetExhausted
	// OutcomeAborted: a round produced neither a tool request nor a final
	// answer (an unrecognized or empty completion).
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeBudgetExhausted:
		return "budget_exhausted"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ToolCallRecord logs one tool invocation and its result.
type ToolCallRecord struct {
	protocol.ToolCall
	Round   int    // Loop round in which the call occurred.
	Result  string // Tool execution output.
	IsError bool   // Whether execution reported a failure.
}

// Result holds the outcome of one loop invocation. It is a plain value;
// nothing is communicated through shared state.
type Result struct {
	Outcome    Outcome
	Response   string // Final text, set only when Outcome is OutcomeCompleted.
	Rounds     int    // Number of model calls made.
	ToolsUsed  []string
	Usage      response.TokenUsage
	ToolCalls  []ToolCallRecord
	Transcript []protocol.Message // Messages produced during the run.
}

// DistinctTools returns the tool names invoked, deduplicated, in order of
// first use.
func (r *Result) DistinctTools() []string {
	seen := make(map[string]bool, len(r.ToolsUsed))
	var distinct []string
	for _, name := range r.ToolsUsed {
		if !seen[name] {
			seen[name] = true
			distinct = append(distinct, name)
		}
	}
	return distinct
}

// ToolResults returns the successful result texts of every invocation of
// the named tool, in invocation order.
func (r *Result) ToolResults(name string) []string {
	var results []string
	for _, record := range r.ToolCalls {
		if record.Name == name && !record.IsError {
			results = append(results, record.Result)
		}
	}
	return results
}

// UsedTool reports whether the named tool was invoked during the run.
func (r *Result) UsedTool(name string) bool {
	for _, used := range r.ToolsUsed {
		if used == name {
			return true
		}
	}
	return false
}
