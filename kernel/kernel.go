// Package kernel implements the agent loop: drive the LLM through repeated
// rounds of tool invocation until it produces a final answer or the round
// budget runs out.
//
//	k := kernel.New(llm, executor)
//	result, err := k.Run(ctx, systemPrompt, conversation)
package kernel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/agentbook/agent"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/observability"
	"github.com/tailored-agentic-units/agentbook/tools"
)

const defaultMaxRounds = 20

// ToolExecutor abstracts tool listing and execution for testability.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithMaxRounds overrides the round budget. Values <= 0 keep the default;
// the budget is always a hard cap.
func WithMaxRounds(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.maxRounds = n
		}
	}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onFirstOutput func()
}

// WithFirstOutput registers a callback fired exactly once, at the first
// round that produces user-visible output (a tool request or the final
// answer). Callers use it to stop a thinking indicator.
func WithFirstOutput(fn func()) RunOption {
	return func(rc *runConfig) { rc.onFirstOutput = fn }
}

// Kernel drives the tool-use conversation loop.
type Kernel struct {
	agent     agent.Agent
	tools     ToolExecutor
	observer  observability.Observer
	maxRounds int
}

// New creates a Kernel around an agent and a tool executor.
func New(a agent.Agent, executor ToolExecutor, opts ...Option) *Kernel {
	k := &Kernel{
		agent:     a,
		tools:     executor,
		observer:  observability.NoOpObserver{},
		maxRounds: defaultMaxRounds,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Run executes the loop over the given conversation. The conversation is
// not mutated; messages produced during the run are returned in
// Result.Transcript so the caller decides what to fold back into shared
// history.
//
// Tool invocations requested in one round execute synchronously in the
// order the model emitted them, and their results are appended in that
// same order before the next round begins. A failed tool call becomes an
// error-text result fed back to the model, never an error from Run.
func (k *Kernel) Run(ctx context.Context, system string, conversation []protocol.Message, opts ...RunOption) (*Result, error) {
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	notified := false
	notify := func() {
		if !notified && rc.onFirstOutput != nil {
			rc.onFirstOutput()
		}
		notified = true
	}

	result := &Result{}
	working := make([]protocol.Message, len(conversation))
	copy(working, conversation)

	catalog := k.tools.List()

	k.observer.OnEvent(ctx, observability.NewEvent(EventRunStart, observability.LevelInfo, "kernel.Run", map[string]any{
		"messages":   len(conversation),
		"max_rounds": k.maxRounds,
		"tools":      len(catalog),
	}))

	for round := 1; round <= k.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		k.observer.OnEvent(ctx, observability.NewEvent(EventRoundStart, observability.LevelVerbose, "kernel.Run", map[string]any{
			"round": round,
		}))

		resp, err := k.agent.Tools(ctx, k.buildMessages(system, working), catalog)
		if err != nil {
			return result, fmt.Errorf("agent call failed: %w", err)
		}
		result.Rounds = round
		if resp.Usage != nil {
			result.Usage.Add(*resp.Usage)
		}

		if len(resp.Choices) == 0 {
			result.Outcome = OutcomeAborted
			k.emitOutcome(ctx, result)
			return result, nil
		}
		choice := resp.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			// An empty completion that stopped cleanly is a final answer
			// with nothing to say. Empty for any other reason (truncation,
			// filtering) is an unrecognized round.
			if choice.Message.Content == "" && choice.FinishReason != "stop" {
				result.Outcome = OutcomeAborted
				k.emitOutcome(ctx, result)
				return result, nil
			}

			notify()
			if choice.Message.Content != "" {
				assistant := protocol.NewMessage(protocol.RoleAssistant, choice.Message.Content)
				working = append(working, assistant)
				result.Transcript = append(result.Transcript, assistant)
			}
			result.Outcome = OutcomeCompleted
			result.Response = choice.Message.Content

			k.emitOutcome(ctx, result)
			return result, nil
		}

		notify()
		assistant := protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		}
		working = append(working, assistant)
		result.Transcript = append(result.Transcript, assistant)

		for _, tc := range choice.Message.ToolCalls {
			k.observer.OnEvent(ctx, observability.NewEvent(EventToolCall, observability.LevelVerbose, "kernel.Run", map[string]any{
				"round": round,
				"name":  tc.Name,
			}))

			record := ToolCallRecord{ToolCall: tc, Round: round}
			result.ToolsUsed = append(result.ToolsUsed, tc.Name)

			toolResult, toolErr := k.tools.Execute(ctx, tc.Name, json.RawMessage(tc.Arguments))
			if toolErr != nil {
				record.Result = fmt.Sprintf("error: %s", toolErr)
				record.IsError = true
			} else {
				record.Result = toolResult.Content
				record.IsError = toolResult.IsError
			}

			msg := protocol.Message{
				Role:       protocol.RoleTool,
				Content:    record.Result,
				ToolCallID: tc.ID,
			}
			working = append(working, msg)
			result.Transcript = append(result.Transcript, msg)
			result.ToolCalls = append(result.ToolCalls, record)

			k.observer.OnEvent(ctx, observability.NewEvent(EventToolComplete, observability.LevelVerbose, "kernel.Run", map[string]any{
				"round": round,
				"name":  tc.Name,
				"error": record.IsError,
			}))
		}
	}

	notify()
	result.Outcome = OutcomeBudgetExhausted
	k.emitOutcome(ctx, result)
	return result, nil
}

func (k *Kernel) buildMessages(system string, working []protocol.Message) []protocol.Message {
	if system == "" {
		return working
	}
	messages := make([]protocol.Message, 0, len(working)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, system))
	return append(messages, working...)
}

func (k *Kernel) emitOutcome(ctx context.Context, result *Result) {
	level := observability.LevelInfo
	if result.Outcome != OutcomeCompleted {
		level = observability.LevelWarning
	}
	k.observer.OnEvent(ctx, observability.NewEvent(EventRunComplete, level, "kernel.Run", map[string]any{
		"outcome":       result.Outcome.String(),
		"rounds":        result.Rounds,
		"tools_used":    len(result.ToolsUsed),
		"input_tokens":  result.Usage.InputTokens,
		"output_tokens": result.Usage.OutputTokens,
	}))
}
