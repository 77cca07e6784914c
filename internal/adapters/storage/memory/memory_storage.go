// Package memory provides the in-memory implementation of the counter
// store. It is the reference backend for local and testing scenarios.
package memory

import (
	"context"
	"sync"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/ports"
)

// Storage counts requests in process-local memory. It never fails and
// needs no cross-process coordination.
type Storage struct {
	mu       sync.Mutex
	counters map[domain.BucketKey]uint64
}

var _ ports.CounterStore = (*Storage)(nil)

// New creates an empty in-memory counter store.
func New() *Storage {
	return &Storage{counters: make(map[domain.BucketKey]uint64)}
}

func (s *Storage) IncrementAndGet(_ context.Context, key domain.BucketKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

func (s *Storage) Get(_ context.Context, key domain.BucketKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

// Prune drops counters for buckets older than before. The decision path
// only ever reads the current and previous bucket, so pruning affects
// memory footprint, never verdicts.
func (s *Storage) Prune(before int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.counters {
		if key.Bucket < before {
			delete(s.counters, key)
		}
	}
}

// Len reports how many bucket counters are currently held.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
