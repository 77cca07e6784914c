// Package services implements the sliding-window admission logic.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/ports"
)

// Registry maps limit-type names to their configuration. It is populated
// during setup and only read by the admission path; registering while
// checks are in flight is not supported.
type Registry struct {
	configs map[string]domain.LimitConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]domain.LimitConfig)}
}

// Register adds or replaces the configuration for a limit type. The last
// registration under a name wins.
func (r *Registry) Register(limitType string, maxRequests uint64, window time.Duration) error {
	if maxRequests == 0 {
		return fmt.Errorf("%w: max requests must be greater than zero", domain.ErrInvalidConfig)
	}
	if window < time.Millisecond {
		return fmt.Errorf("%w: window duration must be at least 1ms", domain.ErrInvalidConfig)
	}
	r.configs[limitType] = domain.LimitConfig{
		MaxRequests:    maxRequests,
		WindowDuration: window,
	}
	return nil
}

// MustRegister is Register for chained setup-time wiring; it panics on an
// invalid configuration.
func (r *Registry) MustRegister(limitType string, maxRequests uint64, window time.Duration) *Registry {
	if err := r.Register(limitType, maxRequests, window); err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves the configuration for a limit type.
func (r *Registry) Lookup(limitType string) (domain.LimitConfig, error) {
	cfg, ok := r.configs[limitType]
	if !ok {
		return domain.LimitConfig{}, fmt.Errorf("%w: %q", domain.ErrNotConfigured, limitType)
	}
	return cfg, nil
}

// SlidingWindowService decides admissions with the sliding-window-counter
// technique: the previous bucket's count, weighted by how much of it still
// overlaps a window ending now, plus the current bucket's count. Two
// integers per subject and type approximate a continuously sliding window.
type SlidingWindowService struct {
	storage  ports.CounterStore
	registry *Registry
	now      func() time.Time
}

var _ ports.RateLimiter = (*SlidingWindowService)(nil)

// NewSlidingWindowService creates the engine over the given counter store.
// A nil registry starts empty.
func NewSlidingWindowService(storage ports.CounterStore, registry *Registry) (*SlidingWindowService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &SlidingWindowService{
		storage:  storage,
		registry: registry,
		now:      time.Now,
	}, nil
}

// RegisterLimit registers a limit type on the engine's registry.
func (s *SlidingWindowService) RegisterLimit(limitType string, maxRequests uint64, window time.Duration) error {
	return s.registry.Register(limitType, maxRequests, window)
}

// Allowed reports whether one more request for subjectID under limitType
// fits the budget, recording it when admitted. A denied request consumes
// no budget. Two concurrent calls can both observe room and both record;
// optimistic counting accepts that small overshoot instead of paying an
// extra store round-trip on the deny path.
func (s *SlidingWindowService) Allowed(ctx context.Context, subjectID, limitType string) (bool, error) {
	cfg, err := s.registry.Lookup(limitType)
	if err != nil {
		return false, err
	}

	nowMillis := s.now().UnixMilli()
	windowMillis := cfg.WindowDuration.Milliseconds()
	currentBucket := nowMillis / windowMillis
	elapsedFraction := float64(nowMillis%windowMillis) / float64(windowMillis)

	previousCount, err := s.storage.Get(ctx, domain.BucketKey{
		SubjectID: subjectID,
		LimitType: limitType,
		Bucket:    currentBucket - 1,
	})
	if err != nil {
		return false, err
	}

	currentKey := domain.BucketKey{
		SubjectID: subjectID,
		LimitType: limitType,
		Bucket:    currentBucket,
	}
	currentCount, err := s.storage.Get(ctx, currentKey)
	if err != nil {
		return false, err
	}

	estimate := float64(previousCount)*(1-elapsedFraction) + float64(currentCount)
	if estimate >= float64(cfg.MaxRequests) {
		return false, nil
	}

	if _, err := s.storage.IncrementAndGet(ctx, currentKey); err != nil {
		return false, err
	}
	return true, nil
}
