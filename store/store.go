// Package store provides document persistence for the agent's durable
// state. Each concern persists as one key-value document: the activity
// memory, the personality record, and the bounded recent-conversation
// transcript. Backends are pluggable — a filesystem directory, a SQLite
// database, or a Redis keyspace — and selected by configuration.
package store

import "context"

// Document keys for the agent's persisted state.
const (
	KeyMemory      = "memory.json"
	KeyPersonality = "personality.yaml"
	KeyHistory     = "chat_history.json"
)

// Entry is a key-value document. Keys are /-separated paths and values are
// raw bytes; the store does not interpret them.
type Entry struct {
	Key   string
	Value []byte
}

// Store translates between external storage and the document namespace.
// Implementations are stateless — they perform I/O on each call without
// caching. Writes are best-effort at the call sites that persist cycle
// state; callers decide whether a failure is fatal.
type Store interface {
	// List returns all available keys in the store.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries to storage, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries from storage. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// LoadOne fetches a single document, returning nil bytes (not an error)
// when the key does not exist yet. First-run state starts empty.
func LoadOne(ctx context.Context, s Store, key string) ([]byte, error) {
	entries, err := s.Load(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0].Value, nil
}

// SaveOne persists a single document.
func SaveOne(ctx context.Context, s Store, key string, value []byte) error {
	return s.Save(ctx, Entry{Key: key, Value: value})
}
