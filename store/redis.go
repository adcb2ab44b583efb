package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Store backed by a Redis keyspace. Documents live
// under prefix (default "agentbook:") so one instance can host several
// agent identities.
func NewRedisStore(url, prefix string) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if prefix == "" {
		prefix = "agentbook:"
	}

	return &redisStore{
		client: redis.NewClient(opts),
		prefix: prefix,
	}, nil
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *redisStore) Load(ctx context.Context, keys ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(keys))

	for _, key := range keys {
		value, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	return entries, nil
}

func (s *redisStore) Save(ctx context.Context, entries ...Entry) error {
	pipe := s.client.TxPipeline()
	for _, e := range entries {
		pipe.Set(ctx, s.prefix+e.Key, e.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
			return fmt.Errorf("delete failed: %s: %w", key, err)
		}
	}
	return nil
}

// Close releases the Redis connection.
func (s *redisStore) Close() error {
	return s.client.Close()
}
