// Package runtime composes the agent's collaborators (model client,
// kernel, memory journal, personality manager, session history, document
// store) into one context object threaded through the interactive
// surface and the cycle orchestrator. Nothing here is global; two
// runtimes in one process stay fully isolated.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/agentbook/agent"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/kernel"
	"github.com/tailored-agentic-units/agentbook/memory"
	"github.com/tailored-agentic-units/agentbook/observability"
	"github.com/tailored-agentic-units/agentbook/personality"
	"github.com/tailored-agentic-units/agentbook/session"
	"github.com/tailored-agentic-units/agentbook/store"
)

const (
	defaultHistoryLimit    = 20
	defaultContextMessages = 6

	// detachedTimeout bounds detached personality updates so a hung model
	// call cannot pin the supervisor forever.
	detachedTimeout = 2 * time.Minute
)

// Runtime event types.
const (
	EventChatStart    observability.EventType = "runtime.chat.start"
	EventChatComplete observability.EventType = "runtime.chat.complete"
	EventPersistError observability.EventType = "runtime.persist.error"
)

// Config wires a Runtime. Agent, Kernel, Memory, Persona, Session, and
// Docs are required.
type Config struct {
	Agent    agent.Agent
	Kernel   *kernel.Kernel
	Memory   *memory.Store
	Persona  *personality.Manager
	Session  session.Session
	Docs     store.Store
	ForumURL string
	Observer observability.Observer

	// HistoryLimit caps how many text messages persist across restarts.
	HistoryLimit int
	// ContextMessages is how much recent history seeds each run.
	ContextMessages int
	// Model and Pricing drive session cost accounting.
	Model   string
	Pricing map[string]Price
}

// ErrIncompleteConfig reports a Config missing a required collaborator.
var ErrIncompleteConfig = errors.New("runtime: incomplete configuration")

// Runtime is the per-agent execution context.
type Runtime struct {
	agent    agent.Agent
	kernel   *kernel.Kernel
	mem      *memory.Store
	persona  *personality.Manager
	sess     session.Session
	docs     store.Store
	forumURL string
	observer observability.Observer

	historyLimit    int
	contextMessages int

	stats  *SessionStats
	super  *Supervisor
	paused atomic.Bool
}

// New builds a Runtime from its collaborators.
func New(cfg Config) (*Runtime, error) {
	if cfg.Agent == nil || cfg.Kernel == nil || cfg.Memory == nil ||
		cfg.Persona == nil || cfg.Session == nil || cfg.Docs == nil {
		return nil, ErrIncompleteConfig
	}

	observer := cfg.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	contextMessages := cfg.ContextMessages
	if contextMessages <= 0 {
		contextMessages = defaultContextMessages
	}

	return &Runtime{
		agent:           cfg.Agent,
		kernel:          cfg.Kernel,
		mem:             cfg.Memory,
		persona:         cfg.Persona,
		sess:            cfg.Session,
		docs:            cfg.Docs,
		forumURL:        cfg.ForumURL,
		observer:        observer,
		historyLimit:    historyLimit,
		contextMessages: contextMessages,
		stats:           NewSessionStats(cfg.Model, cfg.Pricing),
		super:           NewSupervisor(observer),
	}, nil
}

// Memory returns the activity journal.
func (r *Runtime) Memory() *memory.Store { return r.mem }

// Persona returns the personality manager.
func (r *Runtime) Persona() *personality.Manager { return r.persona }

// Stats returns the session accounting.
func (r *Runtime) Stats() *SessionStats { return r.stats }

// Pause suspends autonomous activity. Cycles still tick while paused.
func (r *Runtime) Pause() { r.paused.Store(true) }

// Resume re-enables autonomous activity.
func (r *Runtime) Resume() { r.paused.Store(false) }

// Paused reports whether autonomous activity is suspended.
func (r *Runtime) Paused() bool { return r.paused.Load() }

// Detach runs fn as a supervised background task.
func (r *Runtime) Detach(name string, fn func()) { r.super.Go(name, fn) }

// Chat processes one interactive exchange: run the kernel over the user's
// message with the full session history, fold the transcript into the
// session, and queue a detached personality update from the exchange.
// Unlike autonomous directives, interactive turns see everything said
// this session; an instruction given early keeps binding later turns.
func (r *Runtime) Chat(ctx context.Context, text string, opts ...kernel.RunOption) (string, error) {
	r.observer.OnEvent(ctx, observability.NewEvent(EventChatStart, observability.LevelVerbose, "runtime.Chat", map[string]any{
		"chars": len(text),
	}))

	userMsg := protocol.NewMessage(protocol.RoleUser, text)
	conversation := append(r.sess.Messages(), userMsg)
	system := r.persona.Snapshot().SystemPrompt(r.forumURL, r.mem)

	result, err := r.kernel.Run(ctx, system, conversation, opts...)
	if err != nil {
		return "", err
	}
	r.stats.Record(result.Usage)

	r.sess.AddMessage(userMsg)
	for _, msg := range result.Transcript {
		r.sess.AddMessage(msg)
	}
	r.Persist(ctx)

	reply := result.Response
	r.observer.OnEvent(ctx, observability.NewEvent(EventChatComplete, observability.LevelVerbose, "runtime.Chat", map[string]any{
		"outcome": result.Outcome.String(),
		"rounds":  result.Rounds,
	}))

	if reply != "" {
		r.Detach("personality.exchange", func() {
			detachedCtx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
			defer cancel()
			_, _ = r.persona.UpdateFromExchange(detachedCtx, r.agent, text, reply)
		})
	}

	return reply, nil
}

// RunDirective executes one autonomous directive against the kernel,
// seeding recent history for continuity. Only the final text answer is
// folded back into the shared session.
func (r *Runtime) RunDirective(ctx context.Context, prompt string) (*kernel.Result, error) {
	userMsg := protocol.NewMessage(protocol.RoleUser, prompt)
	conversation := append(r.sess.Tail(r.contextMessages), userMsg)
	system := r.persona.Snapshot().SystemPrompt(r.forumURL, r.mem)

	result, err := r.kernel.Run(ctx, system, conversation)
	if err != nil {
		return nil, err
	}
	r.stats.Record(result.Usage)

	if result.Response != "" {
		r.sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, result.Response))
	}
	return result, nil
}

// EvolveFromPosts runs the gated content-driven evolution pathway over
// posts read during a cycle.
func (r *Runtime) EvolveFromPosts(ctx context.Context, posts []string) (personality.UpdateResult, error) {
	return r.persona.EvolveFromPosts(ctx, r.agent, posts)
}

// Persist flushes the journal and the trimmed chat transcript. Failures
// are reported, never fatal; the in-memory state remains authoritative.
func (r *Runtime) Persist(ctx context.Context) {
	if err := r.mem.Flush(ctx, r.docs); err != nil {
		r.persistError(ctx, store.KeyMemory, err)
	}
	if err := r.saveHistory(ctx); err != nil {
		r.persistError(ctx, store.KeyHistory, err)
	}
}

func (r *Runtime) persistError(ctx context.Context, key string, err error) {
	r.observer.OnEvent(ctx, observability.NewEvent(EventPersistError, observability.LevelWarning, "runtime.Persist", map[string]any{
		"key":   key,
		"error": err.Error(),
	}))
}

// RestoreHistory seeds the session from the persisted transcript. Missing
// or corrupt transcripts start the session empty.
func (r *Runtime) RestoreHistory(ctx context.Context) error {
	data, err := store.LoadOne(ctx, r.docs, store.KeyHistory)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var msgs []protocol.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	r.sess.Seed(textOnly(msgs, r.historyLimit))
	return nil
}

// saveHistory persists the most recent text messages. Tool-call plumbing
// is dropped: restored transcripts must stand alone without dangling
// tool-result references.
func (r *Runtime) saveHistory(ctx context.Context) error {
	msgs := textOnly(r.sess.Messages(), r.historyLimit)
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return err
	}
	return store.SaveOne(ctx, r.docs, store.KeyHistory, data)
}

// textOnly filters to plain text messages and keeps the most recent limit.
func textOnly(msgs []protocol.Message, limit int) []protocol.Message {
	var out []protocol.Message
	for _, m := range msgs {
		if m.IsText() {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Close persists all state and waits for detached tasks to drain.
func (r *Runtime) Close(ctx context.Context) error {
	r.Persist(ctx)
	err := r.persona.Save(ctx)
	if !r.super.Wait(10 * time.Second) {
		r.observer.OnEvent(ctx, observability.NewEvent(EventPersistError, observability.LevelWarning, "runtime.Close", map[string]any{
			"error": "detached tasks still running at shutdown",
		}))
	}
	return err
}
