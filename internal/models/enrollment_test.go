package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateProgress(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{3, 8, 38},
		{5, 8, 63},
		{1, 200, 1},
		{4, 4, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CalculateProgress(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestEnrollment_CompleteResetPrune(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEnrollment("c1", at)

	e.Complete("m1", at)
	e.Complete("m2", at.Add(time.Minute))
	assert.True(t, e.HasCompleted("m1"))
	assert.Equal(t, "m2", *e.LastAccessedModule)
	assert.True(t, e.Recompute(4))
	assert.Equal(t, 50, e.Progress)
	assert.False(t, e.Recompute(4))

	assert.False(t, e.Reset("m9"))
	assert.True(t, e.Reset("m1"))
	assert.Equal(t, []string{"m2"}, e.CompletedModuleIDs())

	assert.True(t, e.Prune(map[string]struct{}{"m1": {}}))
	assert.Empty(t, e.CompletedModules)
	assert.True(t, e.Recompute(0))
	assert.Equal(t, 0, e.Progress)
}
