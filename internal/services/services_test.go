package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/security"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	clock     *fakeClock
	tokens    *security.TokenManager

	manager     ServiceManager
	auth        AuthService
	courses     CourseService
	enrollments EnrollmentService
	reports     ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	client, _ := testutil.NewTestRedis(t)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: client,
		CacheTTL:    time.Minute,
	})
	cacheManager := repo.(*postgres.PostgreSQLRepository).CacheManager()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := security.NewTokenManager("test-secret", security.DefaultTokenTTL).WithClock(clock.Now)
	publisher := events.NewMockEventPublisher(logger)

	manager := NewServiceManager(repo, cacheManager, publisher, logger, validator.New(), ServiceManagerConfig{
		Tokens: tokens,
		Hasher: security.NewPasswordHasher(bcrypt.MinCost),
		DefaultAdmin: config.DefaultAdminConfig{
			Name:     "Root",
			Email:    "Admin@EduLearn.com",
			Password: "admin123",
		},
	})
	require.NoError(t, manager.Initialize(context.Background()))

	manager.Enrollment().(*enrollmentService).now = clock.Now
	manager.Auth().(*authService).now = clock.Now

	return &testEnv{
		repo:        repo,
		publisher:   publisher,
		clock:       clock,
		tokens:      tokens,
		manager:     manager,
		auth:        manager.Auth(),
		courses:     manager.Course(),
		enrollments: manager.Enrollment(),
		reports:     manager.Report(),
	}
}

func (e *testEnv) registerStudent(t *testing.T, email string) *models.Student {
	t.Helper()
	res, err := e.auth.RegisterStudent(context.Background(), &RegisterStudentRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret1",
	})
	require.NoError(t, err)
	return res.Student.Student
}

func (e *testEnv) createCourse(t *testing.T, title string, modules int) *models.Course {
	t.Helper()
	req := &CreateCourseRequest{
		Title:       title,
		Description: "Learn " + title,
		Instructor:  "Grace Hopper",
		Duration:    "4 weeks",
		Level:       models.LevelBeginner,
		Category:    "Programming",
		VideoURL:    "https://videos.example.com/intro",
	}
	// Supplied in reverse order to check sorting
	for i := modules; i >= 1; i-- {
		req.Modules = append(req.Modules, validator.ModuleRequest{
			Title: title + " module",
			Order: i,
		})
	}
	course, err := e.courses.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)
	return course
}

func (e *testEnv) adminWithAnalytics(t *testing.T) *models.Admin {
	t.Helper()
	admin, err := e.auth.EnsureDefaultAdmin(context.Background())
	require.NoError(t, err)
	return admin
}
