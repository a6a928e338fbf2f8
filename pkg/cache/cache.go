// Package cache memoizes analysis text per (image, question) pair for the
// lifetime of one agent. Entries never expire.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	keySeparator    = "\x00"
	defaultQuestion = "default"
	questionPrefix  = "q:"
)

// Key derives the cache key for an image reference and an optional question.
// An empty question maps to a sentinel that cannot collide with any real question.
func Key(imageURL, question string) string {
	if question == "" {
		return imageURL + keySeparator + defaultQuestion
	}
	return imageURL + keySeparator + questionPrefix + question
}

// Store is a concurrency-safe key->text memo with per-key single-flight.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
}

// New creates an empty store
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// Get returns the cached text for key
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.entries[key]
	return text, ok
}

// Put stores text under key; a later Put for the same key wins.
func (s *Store) Put(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = text
}

// Len returns the number of cached entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Do returns the cached text for key, or runs compute exactly once among
// concurrent callers for the same key. Only successful results are stored.
// hit is true when the value came from the cache without computing.
//
// compute runs on a context detached from ctx's cancellation: the flight is
// shared, so one caller going away must not fail the others waiting on it.
// Its deadline comes from the adapters' HTTP client timeouts.
func (s *Store) Do(ctx context.Context, key string, compute func(ctx context.Context) (string, error)) (text string, hit bool, err error) {
	if text, ok := s.Get(key); ok {
		return text, true, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		// Another flight may have finished between Get and Do.
		if text, ok := s.Get(key); ok {
			return text, nil
		}
		text, err := compute(flightCtx)
		if err != nil {
			return "", err
		}
		s.Put(key, text)
		return text, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}
