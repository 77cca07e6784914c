package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
)

func TestStorage_IncrementAndGet(t *testing.T) {
	storage := New()
	ctx := context.Background()
	key := domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: 42}

	for want := uint64(1); want <= 3; want++ {
		count, err := storage.IncrementAndGet(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestStorage_GetAbsentKeyIsZero(t *testing.T) {
	storage := New()

	count, err := storage.Get(context.Background(), domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestStorage_KeysAreIndependent(t *testing.T) {
	storage := New()
	ctx := context.Background()

	keys := []domain.BucketKey{
		{SubjectID: "u1", LimitType: "type1", Bucket: 1},
		{SubjectID: "u1", LimitType: "type2", Bucket: 1},
		{SubjectID: "u2", LimitType: "type1", Bucket: 1},
		{SubjectID: "u1", LimitType: "type1", Bucket: 2},
	}

	for i, key := range keys {
		for j := 0; j <= i; j++ {
			_, err := storage.IncrementAndGet(ctx, key)
			require.NoError(t, err)
		}
	}

	for i, key := range keys {
		count, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), count, "key %d", i)
	}
}

func TestStorage_ConcurrentIncrementsLoseNothing(t *testing.T) {
	const (
		goroutines = 8
		increments = 250
	)

	storage := New()
	ctx := context.Background()
	key := domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: 7}

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				_, err := storage.IncrementAndGet(ctx, key)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	count, err := storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(goroutines*increments), count)
}

func TestStorage_PruneDropsOnlyOldBuckets(t *testing.T) {
	storage := New()
	ctx := context.Background()

	for bucket := int64(0); bucket < 5; bucket++ {
		_, err := storage.IncrementAndGet(ctx, domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: bucket})
		require.NoError(t, err)
	}
	require.Equal(t, 5, storage.Len())

	storage.Prune(3)
	assert.Equal(t, 2, storage.Len())

	count, err := storage.Get(ctx, domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "recent buckets must survive pruning")

	count, err = storage.Get(ctx, domain.BucketKey{SubjectID: "u1", LimitType: "type1", Bucket: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
