package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func TestReportService_RequiresAnalyticsPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	limited := &models.Admin{
		ID:          "limited",
		Permissions: datatypes.NewJSONType(models.AdminPermissions{CanManageCourses: true}),
	}

	_, err := env.reports.Stats(ctx, limited)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.reports.EnrollmentReport(ctx, limited)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.reports.Stats(ctx, nil)
	assert.ErrorIs(t, err, ErrAnalyticsForbidden)
}

func TestReportService_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminWithAnalytics(t)

	one := env.createCourse(t, "One", 1)
	two := env.createCourse(t, "Two", 2)
	alice := env.registerStudent(t, "alice@example.com")
	env.registerStudent(t, "bob@example.com")

	_, err := env.enrollments.Enroll(ctx, alice.ID, one.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Enroll(ctx, alice.ID, two.ID)
	require.NoError(t, err)
	_, err = env.enrollments.CompleteModule(ctx, alice.ID, one.ID, one.Modules[0].ModuleID)
	require.NoError(t, err)

	stats, err := env.reports.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(2), stats.TotalCourses)
	assert.Equal(t, int64(2), stats.TotalEnrollments)
	assert.Equal(t, int64(1), stats.CompletedEnrollments)
	assert.Equal(t, 50.0, stats.AverageProgress)

	// progress changes invalidate the cached numbers
	_, err = env.enrollments.CompleteModule(ctx, alice.ID, two.ID, two.Modules[0].ModuleID)
	require.NoError(t, err)

	stats, err = env.reports.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 75.0, stats.AverageProgress)
}

func TestReportService_EnrollmentReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminWithAnalytics(t)

	course := env.createCourse(t, "Go Basics", 2)
	other := env.createCourse(t, "Rust Intro", 1)
	alice := env.registerStudent(t, "alice@example.com")
	bob := env.registerStudent(t, "bob@example.com")

	_, err := env.enrollments.Enroll(ctx, alice.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Enroll(ctx, alice.ID, other.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Enroll(ctx, bob.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollments.CompleteModule(ctx, bob.ID, course.ID, course.Modules[0].ModuleID)
	require.NoError(t, err)

	data, err := env.reports.EnrollmentReport(ctx, admin)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Student", rows[0][0])

	var bobRow []string
	for _, r := range rows[1:] {
		if r[1] == "bob@example.com" {
			bobRow = r
		}
	}
	require.NotNil(t, bobRow)
	assert.Equal(t, "Go Basics", bobRow[2])
	assert.Equal(t, []string{"1", "2", "50"}, bobRow[4:7])
}

func TestReportService_ListStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminWithAnalytics(t)

	env.registerStudent(t, "ada@example.com")
	bob := env.registerStudent(t, "bob@example.com")
	env.registerStudent(t, "carol@example.com")

	t.Run("requires the manage students permission", func(t *testing.T) {
		limited := &models.Admin{
			ID:          "limited",
			Permissions: datatypes.NewJSONType(models.AdminPermissions{CanViewAnalytics: true}),
		}
		_, err := env.reports.ListStudents(ctx, limited, StudentListParams{})
		assert.ErrorIs(t, err, ErrStudentsForbidden)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("pages", func(t *testing.T) {
		res, err := env.reports.ListStudents(ctx, admin, StudentListParams{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, res.Students, 1)
		assert.Equal(t, Pagination{Current: 2, Pages: 2, Total: 3}, res.Pagination)
	})

	t.Run("search", func(t *testing.T) {
		res, err := env.reports.ListStudents(ctx, admin, StudentListParams{Search: "BOB@"})
		require.NoError(t, err)
		require.Len(t, res.Students, 1)
		assert.Equal(t, bob.ID, res.Students[0].ID)
		assert.Equal(t, "Ada Lovelace", res.Students[0].FullName)
	})

	t.Run("active filter", func(t *testing.T) {
		stored, err := env.repo.Student().GetByID(ctx, bob.ID)
		require.NoError(t, err)
		stored.IsActive = false
		require.NoError(t, env.repo.Student().Update(ctx, stored))

		inactive := false
		res, err := env.reports.ListStudents(ctx, admin, StudentListParams{Active: &inactive})
		require.NoError(t, err)
		require.Len(t, res.Students, 1)
		assert.Equal(t, bob.ID, res.Students[0].ID)

		active := true
		res, err = env.reports.ListStudents(ctx, admin, StudentListParams{Active: &active})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Pagination.Total)
	})
}
