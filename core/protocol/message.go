// Package protocol defines the conversation wire types shared by the agent
// loop, the LLM boundary, and the tool registry: roles, messages, tool
// invocations, and tool definitions.
package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model. ID is the
// correlation identifier pairing the invocation with its later result
// within one round.
//
// Fields are flat (ID, Name, Arguments) for direct use across the runtime.
// UnmarshalJSON transparently handles the nested LLM API format
// (function.name, function.arguments) so provider responses decode correctly.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalJSON serializes to the nested LLM API format
// ({type, function: {name, arguments}}) for provider communication.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}{
		ID:   tc.ID,
		Type: "function",
		Function: struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}{
			Name:      tc.Name,
			Arguments: tc.Arguments,
		},
	})
}

// UnmarshalJSON handles both the nested LLM API format
// ({function: {name, arguments}}) and the flat runtime format
// ({name, arguments}).
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Message is a single message in a conversation.
//
// For tool-calling conversations, assistant messages carry ToolCalls and
// tool result messages carry a ToolCallID that correlates back to the
// request. Messages carrying either are dropped when conversation history
// is persisted across process restarts.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a Message with the given role and text content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// IsText reports whether the message is a plain text entry with no tool
// call structure attached. Only text entries survive history persistence.
func (m Message) IsText() bool {
	return len(m.ToolCalls) == 0 && m.ToolCallID == ""
}
