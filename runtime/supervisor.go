package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tailored-agentic-units/agentbook/observability"
)

// EventTaskPanic is emitted when a detached task panics.
const EventTaskPanic observability.EventType = "runtime.task.panic"

// Supervisor tracks detached background tasks so shutdown can wait for
// them and a panicking task cannot take the process down.
type Supervisor struct {
	wg       sync.WaitGroup
	observer observability.Observer
}

// NewSupervisor creates a Supervisor reporting panics to the observer.
func NewSupervisor(o observability.Observer) *Supervisor {
	if o == nil {
		o = observability.NoOpObserver{}
	}
	return &Supervisor{observer: o}
}

// Go runs fn on its own goroutine. A panic is recovered and reported; it
// never propagates.
func (s *Supervisor) Go(name string, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.observer.OnEvent(context.Background(), observability.NewEvent(
					EventTaskPanic, observability.LevelError, "runtime.Supervisor",
					map[string]any{"task": name, "panic": fmt.Sprint(r)},
				))
			}
		}()
		fn()
	}()
}

// Wait blocks until all tracked tasks finish or the timeout elapses.
// Returns false when tasks were still running at the deadline.
func (s *Supervisor) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
