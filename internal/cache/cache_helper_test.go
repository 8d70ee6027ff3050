package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCourse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute_FetchesOnceThenHits(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &cachedCourse{ID: "c1", Title: "Go"}, nil
	}

	var first cachedCourse
	require.NoError(t, cm.Course.CacheOrExecute(ctx, CourseKey("c1"), &first, time.Minute, fetch))
	assert.Equal(t, "Go", first.Title)
	assert.True(t, mr.Exists("course:id:c1"))

	var second cachedCourse
	require.NoError(t, cm.Course.CacheOrExecute(ctx, CourseKey("c1"), &second, time.Minute, fetch))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheOrExecute_PropagatesFetchError(t *testing.T) {
	cm, mr := newTestManager(t)

	var dest cachedCourse
	err := cm.Course.CacheOrExecute(context.Background(), CourseKey("missing"), &dest, time.Minute, func() (interface{}, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists("course:id:missing"))
}

func TestInvalidateCourseCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Course.Set(ctx, CourseKey("c1"), cachedCourse{ID: "c1"}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, CourseKey("c2"), cachedCourse{ID: "c2"}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, "list:abc", []cachedCourse{{ID: "c1"}}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, "list:def", []cachedCourse{{ID: "c2"}}, time.Minute))
	require.NoError(t, cm.Stats.Set(ctx, "overview", map[string]int{"courses": 2}, time.Minute))

	InvalidateCourseCache(ctx, cm, "c1")

	assert.False(t, mr.Exists("course:id:c1"))
	assert.True(t, mr.Exists("course:id:c2"))
	assert.False(t, mr.Exists("course:list:abc"))
	assert.False(t, mr.Exists("course:list:def"))
	assert.False(t, mr.Exists("stats:overview"))
}

func TestIncr_StartsWindowOnFirstHit(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	count, ttl, err := cm.RateLimit.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	count, _, err = cm.RateLimit.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	mr.FastForward(2 * time.Minute)
	count, _, err = cm.RateLimit.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDisabledCache(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.NoError(t, cm.Course.Set(ctx, "k", "v", time.Minute))

	var dest string
	assert.ErrorIs(t, cm.Course.Get(ctx, "k", &dest), ErrCacheNotAvailable)

	calls := 0
	require.NoError(t, cm.Course.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return "fresh", nil
	}))
	assert.Equal(t, "fresh", dest)
	assert.Equal(t, 1, calls)

	InvalidateCourseCache(ctx, cm, "c1")
}
