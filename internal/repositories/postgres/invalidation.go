package postgres

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/learning-service/internal/cache"
)

// invalidationTracker applies cache invalidations immediately, or defers them
// until commit when the repositories are bound to a transaction.
type invalidationTracker struct {
	cacheManager *cache.CacheManager
	deferred     bool

	mu        sync.Mutex
	courseIDs []string
	stats     bool
}

func newInvalidationTracker(cm *cache.CacheManager) *invalidationTracker {
	return &invalidationTracker{cacheManager: cm}
}

func newDeferredTracker(cm *cache.CacheManager) *invalidationTracker {
	return &invalidationTracker{cacheManager: cm, deferred: true}
}

func (t *invalidationTracker) inTransaction() bool {
	return t != nil && t.deferred
}

func (t *invalidationTracker) coursesChanged(ctx context.Context, ids ...string) {
	if t == nil {
		return
	}
	if !t.deferred {
		cache.InvalidateCourseCache(ctx, t.cacheManager, ids...)
		return
	}
	t.mu.Lock()
	t.courseIDs = append(t.courseIDs, ids...)
	t.mu.Unlock()
}

func (t *invalidationTracker) statsChanged(ctx context.Context) {
	if t == nil {
		return
	}
	if !t.deferred {
		cache.InvalidateStats(ctx, t.cacheManager)
		return
	}
	t.mu.Lock()
	t.stats = true
	t.mu.Unlock()
}

// flush applies everything recorded during a committed transaction
func (t *invalidationTracker) flush(ctx context.Context) {
	t.mu.Lock()
	ids, stats := t.courseIDs, t.stats
	t.courseIDs, t.stats = nil, false
	t.mu.Unlock()

	if len(ids) > 0 {
		cache.InvalidateCourseCache(ctx, t.cacheManager, ids...)
	} else if stats {
		cache.InvalidateStats(ctx, t.cacheManager)
	}
}
