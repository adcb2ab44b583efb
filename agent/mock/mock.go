// Package mock provides a scripted Agent for tests. Responses are consumed
// in order; helpers build tool-request and final-answer rounds without
// hand-writing response envelopes.
package mock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/core/response"
)

// Agent replays a scripted sequence of tools responses and chat replies.
type Agent struct {
	id string

	mu        sync.Mutex
	responses []*response.ToolsResponse
	errs      []error
	chats     []string

	toolsCalls atomic.Int32
	chatCalls  atomic.Int32

	// LastMessages records the conversation of the most recent Tools call.
	LastMessages []protocol.Message
}

// Option configures a mock Agent.
type Option func(*Agent)

// WithID overrides the generated agent identifier.
func WithID(id string) Option {
	return func(a *Agent) { a.id = id }
}

// WithResponses scripts the Tools responses, consumed one per call.
func WithResponses(responses ...*response.ToolsResponse) Option {
	return func(a *Agent) { a.responses = responses }
}

// WithErrors scripts per-call Tools errors, paired by index with responses.
func WithErrors(errs ...error) Option {
	return func(a *Agent) { a.errs = errs }
}

// WithChats scripts the Chat replies, consumed one per call.
func WithChats(chats ...string) Option {
	return func(a *Agent) { a.chats = chats }
}

// New creates a scripted Agent.
func New(opts ...Option) *Agent {
	a := &Agent{id: uuid.Must(uuid.NewV7()).String()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) ID() string {
	return a.id
}

// ToolsCalls reports how many Tools calls have been made.
func (a *Agent) ToolsCalls() int {
	return int(a.toolsCalls.Load())
}

// ChatCalls reports how many Chat calls have been made.
func (a *Agent) ChatCalls() int {
	return int(a.chatCalls.Load())
}

func (a *Agent) Tools(_ context.Context, messages []protocol.Message, _ []protocol.Tool) (*response.ToolsResponse, error) {
	i := int(a.toolsCalls.Add(1)) - 1

	a.mu.Lock()
	a.LastMessages = messages
	responses := a.responses
	errs := a.errs
	a.mu.Unlock()

	if i >= len(responses) {
		return nil, errors.New("mock: no more responses configured")
	}
	var err error
	if i < len(errs) {
		err = errs[i]
	}
	return responses[i], err
}

func (a *Agent) Chat(_ context.Context, _ []protocol.Message) (string, error) {
	i := int(a.chatCalls.Add(1)) - 1

	a.mu.Lock()
	chats := a.chats
	a.mu.Unlock()

	if i >= len(chats) {
		return "", errors.New("mock: no more chat replies configured")
	}
	return chats[i], nil
}

// FinalResponse builds a tools response whose single choice is a final
// text answer.
func FinalResponse(text string, usage response.TokenUsage) *response.ToolsResponse {
	resp := &response.ToolsResponse{Usage: &usage}
	var choice response.Choice
	choice.Message.Role = "assistant"
	choice.Message.Content = text
	choice.FinishReason = "stop"
	resp.Choices = []response.Choice{choice}
	return resp
}

// ToolRequestResponse builds a tools response whose single choice requests
// the given tool calls, in order.
func ToolRequestResponse(usage response.TokenUsage, calls ...protocol.ToolCall) *response.ToolsResponse {
	resp := &response.ToolsResponse{Usage: &usage}
	var choice response.Choice
	choice.Message.Role = "assistant"
	choice.Message.ToolCalls = calls
	choice.FinishReason = "tool_calls"
	resp.Choices = []response.Choice{choice}
	return resp
}

// EmptyResponse builds a tools response with no choices, the unrecognized
// round shape that aborts the loop.
func EmptyResponse() *response.ToolsResponse {
	return &response.ToolsResponse{}
}

// Call builds a ToolCall with a generated correlation identifier.
func Call(name, arguments string) protocol.ToolCall {
	return protocol.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: arguments,
	}
}
