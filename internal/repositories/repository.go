package repositories

import "context"

// Repository aggregates all repositories of the service
type Repository interface {
	Student() StudentRepository
	Admin() AdminRepository
	Course() CourseRepository

	// WithTransaction runs fn against repositories bound to one database transaction
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
