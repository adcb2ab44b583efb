// Package session manages conversation history shared between the
// interactive surface and autonomous cycles.
package session

import (
	"github.com/tailored-agentic-units/agentbook/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use; the interactive goroutine and the cycle
// orchestrator read and append concurrently.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Tail returns a defensive copy of the most recent n messages.
	// Autonomous cycles seed their conversation with Tail for continuity.
	Tail(n int) []protocol.Message
	// Seed replaces the conversation history, used when restoring a
	// persisted transcript at startup.
	Seed(msgs []protocol.Message)
	// Clear resets the conversation history.
	Clear()
}
