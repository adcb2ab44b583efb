package response_test

import (
	"testing"

	"github.com/tailored-agentic-units/agentbook/core/response"
)

func TestParseTools_FinalAnswer(t *testing.T) {
	body := []byte(`{
		"id": "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "hello there"},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
	}`)

	resp, err := response.ParseTools(body)
	if err != nil {
		t.Fatalf("ParseTools() error = %v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("Choices = %d, want 1", len(resp.Choices))
	}
	if resp.Choices[0].Message.Content != "hello there" {
		t.Errorf("Content = %q", resp.Choices[0].Message.Content)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestParseTools_ToolCalls(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o-mini",
		"choices": [{
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [
					{"id": "a", "type": "function", "function": {"name": "list_posts", "arguments": "{}"}},
					{"id": "b", "type": "function", "function": {"name": "vote", "arguments": "{\"value\":1}"}}
				]
			},
			"finish_reason": "tool_calls"
		}]
	}`)

	resp, err := response.ParseTools(body)
	if err != nil {
		t.Fatalf("ParseTools() error = %v", err)
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) != 2 {
		t.Fatalf("ToolCalls = %d, want 2", len(calls))
	}
	if calls[0].Name != "list_posts" || calls[1].Name != "vote" {
		t.Errorf("ToolCalls = %+v", calls)
	}
	if calls[1].Arguments != `{"value":1}` {
		t.Errorf("Arguments = %q", calls[1].Arguments)
	}
}

func TestParseTools_Malformed(t *testing.T) {
	if _, err := response.ParseTools([]byte("{nope")); err == nil {
		t.Error("ParseTools() error = nil for malformed body")
	}
}

func TestTokenUsage_Add(t *testing.T) {
	var total response.TokenUsage
	total.Add(response.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(response.TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5})

	if total.InputTokens != 13 || total.OutputTokens != 7 || total.TotalTokens != 20 {
		t.Errorf("total = %+v", total)
	}
}
