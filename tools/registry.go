// Package tools implements the tool registry and dispatch boundary.
// Handlers are the only place side effects against the forum happen; any
// transport failure is converted into a text Result so the agent loop can
// feed it back to the model instead of crashing.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/agentbook/core/protocol"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the LLM.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next LLM turn.
// IsError signals to the LLM that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

// Errorf builds a failed Result with a formatted description. Transport and
// validation failures at the tool boundary use this instead of returning an
// error, so the model sees them as ordinary output.
func Errorf(format string, args ...any) Result {
	return Result{Content: fmt.Sprintf(format, args...), IsError: true}
}

type entry struct {
	tool    protocol.Tool
	handler Handler
}

// Registry holds named tools with their definitions and handlers.
// Thread-safe for concurrent registration and dispatch.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a new tool to the registry.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Replace updates an existing tool's definition and handler.
// Returns ErrNotFound if no tool with the given name is registered.
func (r *Registry) Replace(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns the definitions of all registered tools.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]protocol.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, e.tool)
	}
	return defs
}

// Execute dispatches a tool call to the registered handler by name.
// An unknown tool name is reported as a failed Result rather than an error,
// matching the boundary contract: the model decides how to recover.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Errorf("Unknown tool: %s", name), nil
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}
