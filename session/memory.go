package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
)

type memorySession struct {
	id       string
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return &memorySession{
		id: uuid.Must(uuid.NewV7()).String(),
	}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) AddMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.messages)
}

func (s *memorySession) Tail(n int) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.messages) == 0 {
		return nil
	}
	if n > len(s.messages) {
		n = len(s.messages)
	}
	return copyMessages(s.messages[len(s.messages)-n:])
}

func (s *memorySession) Seed(msgs []protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = copyMessages(msgs)
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func copyMessages(msgs []protocol.Message) []protocol.Message {
	copied := make([]protocol.Message, len(msgs))
	for i, msg := range msgs {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	return copied
}
