// Package ports defines the contracts that connect the core to external
// implementations.
package ports

import (
	"context"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
)

// CounterStore is where bucketed request counts live. Implementations
// must be safe for concurrent use on the same key.
type CounterStore interface {
	// IncrementAndGet atomically increments the counter for key, creating
	// it at zero when absent, and returns the post-increment value. No
	// increment may be lost under concurrent calls.
	IncrementAndGet(ctx context.Context, key domain.BucketKey) (uint64, error)

	// Get returns the counter for key, or 0 when absent. The engine uses
	// it to inspect buckets it will never mutate.
	Get(ctx context.Context, key domain.BucketKey) (uint64, error)
}
