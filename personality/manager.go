package personality

import (
	"context"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/agentbook/store"
)

// Manager serializes all access to the identity record. The interactive
// goroutine and detached evolution tasks race on the same record; every
// read-modify-write happens under the manager's lock, which is never held
// across a network call.
type Manager struct {
	mu   sync.Mutex
	p    Personality
	docs store.Store
}

// NewManager loads the persisted identity from the document store, falling
// back to the default identity when no document exists or it fails to
// parse.
func NewManager(ctx context.Context, docs store.Store) (*Manager, error) {
	m := &Manager{p: Default(), docs: docs}

	data, err := store.LoadOne(ctx, docs, store.KeyPersonality)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var loaded Personality
		if err := yaml.Unmarshal(data, &loaded); err == nil && loaded.Name != "" {
			m.p = loaded
		}
	}

	return m, nil
}

// Snapshot returns a deep copy of the current identity.
func (m *Manager) Snapshot() Personality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p.Clone()
}

// Save persists the current identity. Called on every accepted mutation
// and at shutdown.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	data, err := yaml.Marshal(m.p)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return store.SaveOne(ctx, m.docs, store.KeyPersonality, data)
}

// apply runs fn under the lock and persists when it reports a change.
// Persistence failure does not roll back the in-memory mutation.
func (m *Manager) apply(ctx context.Context, fn func(p *Personality) UpdateResult) UpdateResult {
	m.mu.Lock()
	result := fn(&m.p)
	m.mu.Unlock()

	if result.Changed {
		_ = m.Save(ctx)
	}
	return result
}
