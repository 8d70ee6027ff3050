package pkg

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/security"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

func newSeedEnv(t *testing.T) (repositories.Repository, services.ServiceManager, *slog.Logger) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, _ := testutil.NewTestRedis(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          testutil.NewTestDB(t),
		RedisClient: client,
		CacheTTL:    time.Minute,
	})
	cacheManager := repo.(*postgres.PostgreSQLRepository).CacheManager()

	manager := services.NewServiceManager(repo, cacheManager, events.NewMockEventPublisher(logger), logger, validator.New(), services.ServiceManagerConfig{
		Tokens: security.NewTokenManager("seed-secret", security.DefaultTokenTTL),
		Hasher: security.NewPasswordHasher(bcrypt.MinCost),
		DefaultAdmin: config.DefaultAdminConfig{
			Name:     "Administrator",
			Email:    "admin@edulearn.com",
			Password: "admin123",
		},
		EnsureDefaultAdmin: true,
	})
	require.NoError(t, manager.Initialize(context.Background()))

	return repo, manager, logger
}

func TestSeedDevelopmentData(t *testing.T) {
	ctx := context.Background()
	repo, manager, logger := newSeedEnv(t)

	summary, err := SeedDevelopmentData(ctx, repo, manager, logger)
	require.NoError(t, err)
	assert.Equal(t, &SeedSummary{Students: 3, Courses: 5, Enrollments: 4}, summary)

	courses, err := repo.Course().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, courses)
	students, err := repo.Student().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, students)

	t.Run("progress follows completed modules", func(t *testing.T) {
		want := map[string][]int{
			"john.doe@student.com":      {33, 50},
			"jane.smith@student.com":    {75, 100},
			"alice.johnson@student.com": {},
		}
		for email, progress := range want {
			student, err := repo.Student().GetByEmail(ctx, email)
			require.NoError(t, err)

			records, err := manager.Enrollment().ListEnrollments(ctx, student.ID)
			require.NoError(t, err)

			got := []int{}
			for _, r := range records {
				got = append(got, r.Progress)
			}
			sort.Ints(got)
			assert.Equal(t, progress, got, email)
		}
	})

	t.Run("seeded students can log in", func(t *testing.T) {
		res, err := manager.Auth().LoginStudent(ctx, &services.LoginRequest{
			Email:    "jane.smith@student.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", res.Student.FirstName)
	})

	t.Run("populated catalog is left alone", func(t *testing.T) {
		again, err := SeedDevelopmentData(ctx, repo, manager, logger)
		require.NoError(t, err)
		assert.True(t, again.Skipped)

		courses, err := repo.Course().Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 5, courses)
	})
}

func TestSeedDevelopmentData_ReusesExistingStudents(t *testing.T) {
	ctx := context.Background()
	repo, manager, logger := newSeedEnv(t)

	existing, err := manager.Auth().RegisterStudent(ctx, &services.RegisterStudentRequest{
		FirstName: "Johnny",
		LastName:  "Doe",
		Email:     "john.doe@student.com",
		Password:  "keepthis",
	})
	require.NoError(t, err)

	summary, err := SeedDevelopmentData(ctx, repo, manager, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 4, summary.Enrollments)

	records, err := manager.Enrollment().ListEnrollments(ctx, existing.Student.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = manager.Auth().LoginStudent(ctx, &services.LoginRequest{
		Email:    "john.doe@student.com",
		Password: "keepthis",
	})
	assert.NoError(t, err)
}
