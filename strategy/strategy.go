// Package strategy chooses a behavioral directive for each autonomous
// cycle. The choice is weighted-random, with weights conditioned on the
// memory journal so the agent follows up when conversations are pending
// and posts fresh content when it has gone quiet.
package strategy

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/tailored-agentic-units/agentbook/memory"
)

// Strategy names the five cycle behaviors.
type Strategy string

const (
	FollowUp       Strategy = "follow_up"
	CreatePost     Strategy = "create_post"
	EngageReply    Strategy = "engage_reply"
	Lurk           Strategy = "lurk"
	SearchDiscover Strategy = "search_discover"
)

// Weight policy constants. Conditional weights depend on memory state.
const (
	followUpPending = 3
	followUpIdle    = 1
	createPostStale = 2
	createPostFresh = 1
	engageWeight    = 2
	lurkWeight      = 1
	searchWeight    = 1

	// staleCycles is how many cycles without a created post before the
	// create_post weight rises.
	staleCycles = 4

	// reminderIDs caps how many already-replied identifiers the advisory
	// reminder lists.
	reminderIDs = 20
)

// Directive is the natural-language instruction seeded as the user turn
// for one autonomous cycle.
type Directive struct {
	Strategy Strategy
	Prompt   string
}

// Selector draws cycle strategies. Safe for concurrent use; the random
// source is injectable so distribution tests are reproducible.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithSource sets the random source, for tests.
func WithSource(src rand.Source) Option {
	return func(s *Selector) { s.rng = rand.New(src) }
}

// NewSelector creates a Selector seeded from the global source.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{rng: rand.New(rand.NewSource(rand.Int63()))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the current weight of every strategy given the memory
// state. Exposed so the weight policy is testable apart from sampling.
func Weights(mem *memory.Store) map[Strategy]int {
	weights := map[Strategy]int{
		FollowUp:       followUpIdle,
		CreatePost:     createPostFresh,
		EngageReply:    engageWeight,
		Lurk:           lurkWeight,
		SearchDiscover: searchWeight,
	}
	if mem.HasPendingConversations() {
		weights[FollowUp] = followUpPending
	}
	if mem.CyclesSinceLastPost() > staleCycles {
		weights[CreatePost] = createPostStale
	}
	return weights
}

// order fixes the sampling order so draws are reproducible for a given
// source.
var order = []Strategy{FollowUp, CreatePost, EngageReply, Lurk, SearchDiscover}

// Pick draws one strategy and renders its directive, augmented with an
// advisory reminder listing recently replied-to identifiers. The reminder
// is prompt text, not an enforced precondition: the model may still
// violate it.
func (s *Selector) Pick(mem *memory.Store) Directive {
	weights := Weights(mem)

	total := 0
	for _, st := range order {
		total += weights[st]
	}

	s.mu.Lock()
	n := s.rng.Intn(total)
	s.mu.Unlock()

	chosen := order[len(order)-1]
	for _, st := range order {
		if n < weights[st] {
			chosen = st
			break
		}
		n -= weights[st]
	}

	prompt := directives[chosen]
	if ids := mem.RepliedIDs(reminderIDs); len(ids) > 0 {
		prompt += fmt.Sprintf(
			"\n\nREMINDER: You already replied to these post IDs: %v. Do NOT reply to them again.",
			ids,
		)
	}

	return Directive{Strategy: chosen, Prompt: prompt}
}
