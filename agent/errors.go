package agent

import "errors"

// Sentinel errors for provider construction and calls.
var (
	ErrMissingModel   = errors.New("model is required")
	ErrMissingAPIKey  = errors.New("api key is required")
	ErrProviderStatus = errors.New("provider returned non-OK status")
)
