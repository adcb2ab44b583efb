// Package cycle implements the autonomous loop: pick a strategy, run its
// directive through the kernel, journal the outcome, and sleep until the
// next tick. A failing cycle is logged and survived; the loop only stops
// when its context is cancelled.
package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/agentbook/observability"
	"github.com/tailored-agentic-units/agentbook/runtime"
	"github.com/tailored-agentic-units/agentbook/strategy"
)

const (
	defaultInterval = 5 * time.Minute
	defaultWarmup   = 10 * time.Second

	// summaryLen caps the response excerpt journaled for each cycle.
	summaryLen = 150

	// evolveTimeout bounds the detached evolution pass.
	evolveTimeout = 2 * time.Minute
)

// Cycle event types.
const (
	EventLoopStart     observability.EventType = "cycle.loop.start"
	EventLoopStop      observability.EventType = "cycle.loop.stop"
	EventCycleStart    observability.EventType = "cycle.start"
	EventCycleComplete observability.EventType = "cycle.complete"
	EventCyclePaused   observability.EventType = "cycle.paused"
	EventCycleError    observability.EventType = "cycle.error"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithWarmup sets the delay before the first cycle.
func WithWarmup(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.warmup = d
		}
	}
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithSelector overrides the strategy selector, for tests.
func WithSelector(s *strategy.Selector) Option {
	return func(o *Orchestrator) { o.selector = s }
}

// Orchestrator drives the autonomous loop over one runtime.
type Orchestrator struct {
	rt       *runtime.Runtime
	selector *strategy.Selector
	interval time.Duration
	warmup   time.Duration
	observer observability.Observer
}

// New creates an Orchestrator for the runtime.
func New(rt *runtime.Runtime, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		rt:       rt,
		selector: strategy.NewSelector(),
		interval: defaultInterval,
		warmup:   defaultWarmup,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run ticks cycles until ctx is cancelled. The cycle counter advances on
// every tick, paused or not, so time-based weighting keeps moving while
// the agent idles. Returns ctx.Err once cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.observer.OnEvent(ctx, observability.NewEvent(EventLoopStart, observability.LevelInfo, "cycle.Run", map[string]any{
		"interval": o.interval.String(),
		"warmup":   o.warmup.String(),
	}))
	defer o.observer.OnEvent(ctx, observability.NewEvent(EventLoopStop, observability.LevelInfo, "cycle.Run", nil))

	if !sleep(ctx, o.warmup) {
		return ctx.Err()
	}

	for {
		cycle := o.rt.Memory().AdvanceCycle()

		if o.rt.Paused() {
			o.observer.OnEvent(ctx, observability.NewEvent(EventCyclePaused, observability.LevelVerbose, "cycle.Run", map[string]any{
				"cycle": cycle,
			}))
		} else {
			o.runCycle(ctx, cycle)
		}

		if !sleep(ctx, o.interval) {
			return ctx.Err()
		}
	}
}

// RunOnce executes a single cycle immediately, advancing the counter.
// Used by the interactive surface's manual trigger.
func (o *Orchestrator) RunOnce(ctx context.Context) {
	o.runCycle(ctx, o.rt.Memory().AdvanceCycle())
}

func (o *Orchestrator) runCycle(ctx context.Context, cycle int) {
	defer func() {
		if r := recover(); r != nil {
			o.observer.OnEvent(ctx, observability.NewEvent(EventCycleError, observability.LevelError, "cycle.runCycle", map[string]any{
				"cycle": cycle,
				"panic": fmt.Sprint(r),
			}))
		}
	}()

	directive := o.selector.Pick(o.rt.Memory())
	o.observer.OnEvent(ctx, observability.NewEvent(EventCycleStart, observability.LevelInfo, "cycle.runCycle", map[string]any{
		"cycle":    cycle,
		"strategy": string(directive.Strategy),
	}))

	result, err := o.rt.RunDirective(ctx, directive.Prompt)
	if err != nil {
		o.observer.OnEvent(ctx, observability.NewEvent(EventCycleError, observability.LevelWarning, "cycle.runCycle", map[string]any{
			"cycle": cycle,
			"error": err.Error(),
		}))
		o.rt.Persist(ctx)
		return
	}

	o.rt.Memory().AddCycleSummary(cycle, result.DistinctTools(), excerpt(result.Response))
	o.rt.Persist(ctx)

	if result.UsedTool("read_post") {
		posts := result.ToolResults("read_post")
		o.rt.Detach("personality.evolve", func() {
			evolveCtx, cancel := context.WithTimeout(context.Background(), evolveTimeout)
			defer cancel()
			_, _ = o.rt.EvolveFromPosts(evolveCtx, posts)
		})
	}

	o.observer.OnEvent(ctx, observability.NewEvent(EventCycleComplete, observability.LevelInfo, "cycle.runCycle", map[string]any{
		"cycle":    cycle,
		"strategy": string(directive.Strategy),
		"outcome":  result.Outcome.String(),
		"rounds":   result.Rounds,
		"tools":    len(result.ToolsUsed),
	}))
}

func excerpt(s string) string {
	if len(s) <= summaryLen {
		return s
	}
	return s[:summaryLen]
}

// sleep waits for d, returning false when ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
