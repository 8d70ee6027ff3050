package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/security"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Tokens       *security.TokenManager
	Hasher       *security.PasswordHasher
	DefaultAdmin config.DefaultAdminConfig

	// EnsureDefaultAdmin creates the bootstrap admin during Initialize
	EnsureDefaultAdmin bool
	ShutdownTimeout    time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo           repositories.Repository
	cacheManager   *cache.CacheManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	config         ServiceManagerConfig

	// Service instances
	authService       AuthService
	courseService     CourseService
	enrollmentService EnrollmentService
	reportService     ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	if config.Tokens == nil {
		config.Tokens = security.NewTokenManager("", security.DefaultTokenTTL)
	}
	if config.Hasher == nil {
		config.Hasher = security.NewPasswordHasher(security.DefaultBcryptCost)
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}

	return &serviceManager{
		repo:           repo,
		cacheManager:   cacheManager,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
		config:         config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.config.Tokens, sm.config.Hasher, sm.config.DefaultAdmin, sm.eventPublisher, sm.logger, sm.validator)
	sm.courseService = NewCourseService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.eventPublisher, sm.logger)
	sm.reportService = NewReportService(sm.repo, sm.cacheManager, sm.logger)

	if sm.config.EnsureDefaultAdmin {
		admin, err := sm.authService.EnsureDefaultAdmin(ctx)
		switch {
		case err == nil:
			sm.logger.Info("Bootstrap admin ready", "email", admin.Email)
		case IsConflict(err):
			sm.logger.Debug("Admin already exists, skipping bootstrap")
		default:
			return fmt.Errorf("failed to ensure default admin: %w", err)
		}
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.courseService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.enrollmentService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. The repository is owned by its manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")
	sm.shutdown = true

	if sm.eventPublisher == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- sm.eventPublisher.Close() }()

	timeout := time.NewTimer(sm.config.ShutdownTimeout)
	defer timeout.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return fmt.Errorf("timed out closing event publisher")
	}

	sm.logger.Info("Service manager shut down")
	return nil
}
