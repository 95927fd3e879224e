package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"leakwatch/pkg/errors"
)

func newTestCache(maxSize int, retention time.Duration) *Cache {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return NewCache(logger, maxSize, retention)
}

func TestCachePutGet(t *testing.T) {
	cache := newTestCache(10, 30*24*time.Hour)

	r := &Report{ReportID: "r-1", GeneratedAt: time.Now().UTC()}
	cache.Put(r)

	got, err := cache.Get("r-1")
	require.NoError(t, err)
	require.Equal(t, r, got)
	require.Equal(t, 1, cache.Size())
}

func TestCacheGetMiss(t *testing.T) {
	cache := newTestCache(10, 30*24*time.Hour)

	_, err := cache.Get("missing")
	require.Error(t, err)
	require.True(t, errors.IsErrorType(err, errors.ErrReportNotFound))
}

func TestCacheEvictExpired(t *testing.T) {
	cache := newTestCache(10, 30*24*time.Hour)

	fresh := &Report{ReportID: "fresh", GeneratedAt: time.Now().UTC()}
	stale := &Report{ReportID: "stale", GeneratedAt: time.Now().UTC().Add(-31 * 24 * time.Hour)}
	cache.Put(fresh)
	cache.Put(stale)

	removed := cache.EvictExpired()
	require.Equal(t, 1, removed)
	require.Equal(t, 1, cache.Size())

	_, err := cache.Get("stale")
	require.True(t, errors.IsErrorType(err, errors.ErrReportNotFound))

	_, err = cache.Get("fresh")
	require.NoError(t, err)
}

func TestCacheEvictExpiredNoopWhenAllFresh(t *testing.T) {
	cache := newTestCache(10, 30*24*time.Hour)

	cache.Put(&Report{ReportID: "a", GeneratedAt: time.Now().UTC()})
	cache.Put(&Report{ReportID: "b", GeneratedAt: time.Now().UTC()})

	require.Equal(t, 0, cache.EvictExpired())
	require.Equal(t, 2, cache.Size())
}

func TestCacheSizeBoundDropsOldest(t *testing.T) {
	cache := newTestCache(3, 30*24*time.Hour)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		cache.Put(&Report{
			ReportID:    fmt.Sprintf("r-%d", i),
			GeneratedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	require.Equal(t, 3, cache.Size())

	_, err := cache.Get("r-0")
	require.True(t, errors.IsErrorType(err, errors.ErrReportNotFound), "oldest report should be evicted first")

	for i := 1; i < 4; i++ {
		_, err := cache.Get(fmt.Sprintf("r-%d", i))
		require.NoError(t, err)
	}
}
