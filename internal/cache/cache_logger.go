package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// CourseKey is the cache key of a single course
func CourseKey(courseID string) string {
	return "id:" + courseID
}

// InvalidateCourseCache drops the course entry, every cached listing and the dashboard stats
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseIDs ...string) {
	if !cm.Enabled() {
		return
	}

	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, CourseKey(id))
	}
	SafeDelete(ctx, cm.Course, keys...)
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeDelete(ctx, cm.Stats, "overview")
}

// InvalidateStats drops cached dashboard numbers after enrollment changes
func InvalidateStats(ctx context.Context, cm *CacheManager) {
	if !cm.Enabled() {
		return
	}
	SafeDelete(ctx, cm.Stats, "overview")
}
