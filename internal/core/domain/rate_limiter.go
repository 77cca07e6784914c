// Package domain holds the core entities of the rate limiter.
package domain

import "time"

// LimitConfig is the budget for one limit type: how many requests are
// admitted per sliding window of WindowDuration.
type LimitConfig struct {
	MaxRequests    uint64
	WindowDuration time.Duration
}

// BucketKey identifies one time bucket of one subject under one limit
// type. Bucket is floor(now / window), so buckets partition the timeline
// into fixed-size bins aligned to the epoch.
type BucketKey struct {
	SubjectID string
	LimitType string
	Bucket    int64
}
