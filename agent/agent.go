// Package agent implements the LLM provider boundary. The runtime speaks two
// protocols: tools (function calling, used by the agent loop) and chat
// (plain one-shot completions, used by personality evolution).
//
// The provider is an OpenAI-compatible chat completions endpoint; given a
// conversation and a tool catalog it returns either tool invocations to
// perform or a final text answer.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/core/response"
)

// Agent is the LLM capability consumed by the agent loop and the
// personality evolution pathways.
type Agent interface {
	// ID returns a stable identifier for this agent instance.
	ID() string

	// Tools submits the conversation with a tool catalog and returns the
	// model's response: tool calls, a final answer, or neither (an
	// unrecognized completion the loop treats as a termination signal).
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error)

	// Chat submits the conversation without tools and returns the text of
	// the first choice.
	Chat(ctx context.Context, messages []protocol.Message) (string, error)
}

// New creates an Agent from configuration. The only provider is the
// OpenAI-compatible HTTP client.
func New(cfg *Config) (Agent, error) {
	return newClient(cfg)
}
