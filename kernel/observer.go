package kernel

import "github.com/tailored-agentic-units/agentbook/observability"

// Kernel event types emitted during the agent loop.
const (
	EventRunStart     observability.EventType = "kernel.run.start"
	EventRunComplete  observability.EventType = "kernel.run.complete"
	EventRoundStart   observability.EventType = "kernel.round.start"
	EventToolCall     observability.EventType = "kernel.tool.call"
	EventToolComplete observability.EventType = "kernel.tool.complete"
)
