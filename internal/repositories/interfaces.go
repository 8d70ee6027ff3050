package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Category  *string             `json:"category"`
	Level     *models.CourseLevel `json:"level"`
	Search    *string             `json:"search"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "title", "updated_at"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

type StudentFilters struct {
	Query    *string `json:"query"`
	IsActive *bool   `json:"is_active"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update persists the whole student row, including embedded enrollments
	Update(ctx context.Context, student *models.Student) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// FindByEnrolledCourse returns every student holding an enrollment for courseID
	FindByEnrolledCourse(ctx context.Context, courseID string) ([]*models.Student, error)

	List(ctx context.Context, filters StudentFilters) ([]*models.Student, int64, error)
	// ForEachBatch walks all students in id order
	ForEachBatch(ctx context.Context, batchSize int, fn func(batch []*models.Student) error) error
	Count(ctx context.Context) (int64, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Course, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
