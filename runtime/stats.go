package runtime

import (
	"sync"

	"github.com/tailored-agentic-units/agentbook/core/response"
)

// Price is the per-million-token cost of a model, in USD.
type Price struct {
	InputPerMTok  float64 `json:"input_per_mtok" yaml:"input_per_mtok"`
	OutputPerMTok float64 `json:"output_per_mtok" yaml:"output_per_mtok"`
}

// DefaultPricing covers the commonly configured models. Unknown models
// cost zero; configure pricing explicitly to track them.
var DefaultPricing = map[string]Price{
	"gpt-4o":      {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-4o-mini": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4.1":     {InputPerMTok: 2.00, OutputPerMTok: 8.00},
	"gpt-4.1-mini": {
		InputPerMTok:  0.40,
		OutputPerMTok: 1.60,
	},
}

// StatsSnapshot is a point-in-time view of session accounting.
type StatsSnapshot struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// SessionStats accumulates token usage and estimated spend across every
// model call made through the runtime. Safe for concurrent use.
type SessionStats struct {
	mu       sync.Mutex
	requests int
	usage    response.TokenUsage
	price    Price
}

// NewSessionStats creates stats priced for the given model. A model
// missing from pricing accumulates tokens with zero cost.
func NewSessionStats(model string, pricing map[string]Price) *SessionStats {
	if pricing == nil {
		pricing = DefaultPricing
	}
	return &SessionStats{price: pricing[model]}
}

// Record folds one run's usage into the totals.
func (s *SessionStats) Record(u response.TokenUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.usage.Add(u)
}

// Snapshot returns current totals with the estimated cost.
func (s *SessionStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Requests:     s.requests,
		InputTokens:  s.usage.InputTokens,
		OutputTokens: s.usage.OutputTokens,
		TotalTokens:  s.usage.TotalTokens,
		CostUSD: float64(s.usage.InputTokens)/1e6*s.price.InputPerMTok +
			float64(s.usage.OutputTokens)/1e6*s.price.OutputPerMTok,
	}
}
