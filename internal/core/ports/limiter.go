// Package ports defines the contracts that connect the core to external
// implementations.
package ports

import "context"

// RateLimiter answers admission checks for a subject under a named limit
// type.
type RateLimiter interface {
	Allowed(ctx context.Context, subjectID, limitType string) (bool, error)
}
