// Package response defines the LLM response envelopes the runtime consumes.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/agentbook/core/protocol"
)

// TokenUsage reports token consumption for a single LLM call.
type TokenUsage struct {
	InputTokens  int `json:"prompt_tokens"`
	OutputTokens int `json:"completion_tokens"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// Add accumulates another call's usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// Choice is a single completion alternative in a tools response.
type Choice struct {
	Index   int `json:"index"`
	Message struct {
		Role      string              `json:"role"`
		Content   string              `json:"content"`
		ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ToolsResponse represents the response from a tools (function calling)
// protocol request. Contains function calls requested by the model along
// with metadata and token usage.
type ToolsResponse struct {
	ID      string      `json:"id,omitempty"`
	Object  string      `json:"object,omitempty"`
	Created int64       `json:"created,omitempty"`
	Model   string      `json:"model"`
	Choices []Choice    `json:"choices"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}

// ParseTools parses a tools response from JSON bytes.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}
