package report

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"leakwatch/pkg/errors"
)

// Cache is a bounded, time-evicted store of generated reports keyed by
// report ID. Values are write-once: keys are freshly generated per
// report, so concurrent inserts never collide and no entry is mutated
// after insertion. Eviction only removes entries past the retention
// window and is safe to run concurrently with generation.
type Cache struct {
	mu        sync.RWMutex
	reports   map[string]*Report
	maxSize   int
	retention time.Duration
	logger    *logrus.Entry
}

// NewCache creates a report cache holding at most maxSize reports, each
// retained for the given duration measured from its generation time.
func NewCache(logger *logrus.Logger, maxSize int, retention time.Duration) *Cache {
	return &Cache{
		reports:   make(map[string]*Report),
		maxSize:   maxSize,
		retention: retention,
		logger:    logger.WithField("component", "report_cache"),
	}
}

// Put stores a report. When the cache is over capacity the oldest
// reports by generation time are dropped first.
func (c *Cache) Put(r *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reports[r.ReportID] = r
	c.evictOverflowLocked()
}

// Get retrieves a report by ID. A miss returns ErrReportNotFound rather
// than an empty report.
func (c *Cache) Get(reportID string) (*Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.reports[reportID]
	if !ok {
		return nil, errors.NewReportNotFound(reportID)
	}
	return r, nil
}

// Size returns the number of cached reports.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}

// EvictExpired removes every report whose age exceeds the retention
// window and returns how many were removed. It performs no other
// mutation, so it may be invoked at any time.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.retention)
	removed := 0
	for id, r := range c.reports {
		if r.GeneratedAt.Before(cutoff) {
			delete(c.reports, id)
			removed++
		}
	}

	if removed > 0 {
		c.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(c.reports),
		}).Info("Evicted expired reports")
	}
	return removed
}

// evictOverflowLocked drops the oldest reports until the cache fits its
// size bound. Caller holds the write lock.
func (c *Cache) evictOverflowLocked() {
	for c.maxSize > 0 && len(c.reports) > c.maxSize {
		oldestID := ""
		var oldestAt time.Time
		for id, r := range c.reports {
			if oldestID == "" || r.GeneratedAt.Before(oldestAt) {
				oldestID = id
				oldestAt = r.GeneratedAt
			}
		}
		delete(c.reports, oldestID)
	}
}
