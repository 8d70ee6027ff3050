package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

func TestEnrollmentService_Enroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Go Basics", 2)
	student := env.registerStudent(t, "ada@example.com")

	res, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, res.CourseID)
	assert.Equal(t, "Go Basics", res.Title)
	assert.True(t, res.EnrolledAt.Equal(env.clock.Now()))

	stored, err := env.repo.Course().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasStudent(student.ID))

	_, err = env.enrollments.Enroll(ctx, student.ID, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.enrollments.Enroll(ctx, student.ID, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	s, err := env.repo.Student().GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, s.Enrollments, 1)
	assert.Equal(t, 0, s.Enrollments[0].Progress)

	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentCreated), 1)
}

func TestEnrollmentService_CompleteAndReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Go Basics", 4)
	student := env.registerStudent(t, "ada@example.com")
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	m1, m2, m3 := course.Modules[0].ModuleID, course.Modules[1].ModuleID, course.Modules[2].ModuleID

	res, err := env.enrollments.CompleteModule(ctx, student.ID, course.ID, m1)
	require.NoError(t, err)
	assert.Equal(t, ModuleProgressResult{ModuleID: m1, Progress: 25, CompletedModules: 1, TotalModules: 4}, *res)

	env.clock.Advance(time.Minute)
	res, err = env.enrollments.CompleteModule(ctx, student.ID, course.ID, m2)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Progress)

	_, err = env.enrollments.CompleteModule(ctx, student.ID, course.ID, m2)
	assert.ErrorIs(t, err, ErrModuleAlreadyCompleted)

	res, err = env.enrollments.ResetModule(ctx, student.ID, course.ID, m1)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Progress)
	assert.Equal(t, 1, res.CompletedModules)

	t.Run("reset of a module never completed is a no-op", func(t *testing.T) {
		res, err := env.enrollments.ResetModule(ctx, student.ID, course.ID, m3)
		require.NoError(t, err)
		assert.Equal(t, 25, res.Progress)
		assert.Len(t, env.publisher.EventsOfType(events.ModuleReset), 1)
	})

	progress, err := env.enrollments.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{m2}, progress.CompletedModuleIDs)
	require.NotNil(t, progress.LastAccessedModule)
	assert.Equal(t, m2, *progress.LastAccessedModule)
	require.NotNil(t, progress.LastAccessed)
	assert.True(t, progress.LastAccessed.Equal(env.clock.Now()))

	assert.Len(t, env.publisher.EventsOfType(events.ModuleCompleted), 2)
}

func TestEnrollmentService_CompleteChecksInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Go Basics", 1)
	student := env.registerStudent(t, "ada@example.com")
	moduleID := course.Modules[0].ModuleID

	_, err := env.enrollments.CompleteModule(ctx, student.ID, "missing", "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = env.enrollments.CompleteModule(ctx, student.ID, course.ID, "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	_, err = env.enrollments.CompleteModule(ctx, student.ID, course.ID, moduleID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = env.enrollments.ResetModule(ctx, student.ID, course.ID, moduleID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = env.enrollments.GetProgress(ctx, student.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEnrollmentService_ProgressRounding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Thirds", 3)
	student := env.registerStudent(t, "ada@example.com")
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	want := []int{33, 67, 100}
	for i, m := range course.Modules {
		res, err := env.enrollments.CompleteModule(ctx, student.ID, course.ID, m.ModuleID)
		require.NoError(t, err)
		assert.Equal(t, want[i], res.Progress)
	}
}

func TestEnrollmentService_ProgressRoundsHalfUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Eighths", 8)
	student := env.registerStudent(t, "ada@example.com")
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	want := []int{13, 25, 38, 50, 63, 75, 88, 100}
	for i, m := range course.Modules {
		res, err := env.enrollments.CompleteModule(ctx, student.ID, course.ID, m.ModuleID)
		require.NoError(t, err)
		assert.Equal(t, want[i], res.Progress, "after %d of 8", i+1)
	}
}

func TestEnrollmentService_ZeroModuleCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Empty", 0)
	student := env.registerStudent(t, "ada@example.com")
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	progress, err := env.enrollments.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalModules)
	assert.Equal(t, 0, progress.CompletedModules)
	assert.Equal(t, 0, progress.Progress)

	res, err := env.enrollments.ResetModule(ctx, student.ID, course.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Progress)
	assert.Equal(t, 0, res.TotalModules)
	assert.Empty(t, env.publisher.EventsOfType(events.ModuleReset))

	_, err = env.enrollments.CompleteModule(ctx, student.ID, course.ID, "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestEnrollmentService_ReconcileAfterCourseEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Go Basics", 3)
	student := env.registerStudent(t, "ada@example.com")
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	for _, m := range course.Modules {
		_, err := env.enrollments.CompleteModule(ctx, student.ID, course.ID, m.ModuleID)
		require.NoError(t, err)
	}

	modules := make([]validator.ModuleRequest, 0, 4)
	for _, m := range course.Modules {
		modules = append(modules, validator.ModuleRequest{ModuleID: m.ModuleID, Title: m.Title, Order: m.Order})
	}
	modules = append(modules, validator.ModuleRequest{Title: "Bonus", Order: 4})
	_, err = env.courses.Update(ctx, course.ID, &UpdateCourseRequest{Modules: &modules}, "admin-1")
	require.NoError(t, err)

	t.Run("added module lowers progress", func(t *testing.T) {
		progress, err := env.enrollments.GetProgress(ctx, student.ID, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 75, progress.Progress)
		assert.Equal(t, 4, progress.TotalModules)

		s, err := env.repo.Student().GetByID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, 75, s.Enrollments[0].Progress)
		assert.Len(t, env.publisher.EventsOfType(events.ProgressReconciled), 1)
	})

	t.Run("reconcile is idempotent", func(t *testing.T) {
		enrollment, err := env.enrollments.ReconcileProgress(ctx, student.ID, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 75, enrollment.Progress)
		assert.Len(t, env.publisher.EventsOfType(events.ProgressReconciled), 1)
	})

	t.Run("removed module drops its completion", func(t *testing.T) {
		trimmed := modules[1:]
		_, err := env.courses.Update(ctx, course.ID, &UpdateCourseRequest{Modules: &trimmed}, "admin-1")
		require.NoError(t, err)

		progress, err := env.enrollments.GetProgress(ctx, student.ID, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, progress.TotalModules)
		assert.Equal(t, 2, progress.CompletedModules)
		assert.Equal(t, 67, progress.Progress)
		assert.NotContains(t, progress.CompletedModuleIDs, course.Modules[0].ModuleID)
	})
}

func TestEnrollmentService_ListEnrollments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.createCourse(t, "First", 2)
	second := env.createCourse(t, "Second", 1)
	student := env.registerStudent(t, "ada@example.com")

	for _, c := range []*models.Course{first, second} {
		_, err := env.enrollments.Enroll(ctx, student.ID, c.ID)
		require.NoError(t, err)
	}
	_, err := env.enrollments.CompleteModule(ctx, student.ID, first.ID, first.Modules[0].ModuleID)
	require.NoError(t, err)

	records, err := env.enrollments.ListEnrollments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, first.ID, records[0].CourseID)
	require.NotNil(t, records[0].Course)
	assert.Equal(t, "First", records[0].Course.Title)
	assert.Len(t, records[0].Course.Modules, 2)
	assert.Equal(t, 50, records[0].Progress)
	assert.Len(t, records[0].CompletedModules, 1)

	assert.Equal(t, second.ID, records[1].CourseID)
	assert.Empty(t, records[1].CompletedModules)
	assert.NotNil(t, records[1].CompletedModules)
}

func TestEnrollmentService_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Go Basics", 1)
	student := env.registerStudent(t, "ada@example.com")

	env.publisher.FailWith(assert.AnError)
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	res, err := env.enrollments.CompleteModule(ctx, student.ID, course.ID, course.Modules[0].ModuleID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress)
}
