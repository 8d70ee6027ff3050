package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
	tracker *invalidationTracker
}

func NewStudentPostgreSQL(db *gorm.DB, tracker *invalidationTracker) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
		tracker: tracker,
	}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return handleDBError(err, "create student")
	}
	s.tracker.statsChanged(ctx)
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student")
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&student).Error
	if err != nil {
		return nil, handleDBError(err, "get student by email")
	}
	return &student, nil
}

func (s *StudentPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check student email")
	}
	return count > 0, nil
}

// Update writes every column so the embedded enrollment document is replaced as a whole
func (s *StudentPostgreSQL) Update(ctx context.Context, student *models.Student) error {
	result := s.db.WithContext(ctx).
		Model(student).
		Select("*").
		Omit("id", "created_at").
		Updates(student)
	if result.Error != nil {
		return handleDBError(result.Error, "update student")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update student")
	}
	s.tracker.statsChanged(ctx)
	return nil
}

func (s *StudentPostgreSQL) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	return handleDBError(err, "update student last login")
}

func (s *StudentPostgreSQL) FindByEnrolledCourse(ctx context.Context, courseID string) ([]*models.Student, error) {
	query := s.db.WithContext(ctx).Model(&models.Student{})

	switch s.helpers.Dialect() {
	case "postgres":
		needle, err := json.Marshal([]map[string]string{{"course_id": courseID}})
		if err != nil {
			return nil, fmt.Errorf("encode enrollment filter: %w", err)
		}
		query = query.Where("enrollments @> ?::jsonb", string(needle))
	case "sqlite":
		query = query.Where("EXISTS (SELECT 1 FROM json_each(CAST(students.enrollments AS TEXT)) WHERE json_extract(json_each.value, '$.course_id') = ?)", courseID)
	default:
		return s.scanEnrolled(ctx, courseID)
	}

	var students []*models.Student
	if err := query.Order("id").Find(&students).Error; err != nil {
		return nil, handleDBError(err, "find students by course")
	}
	return students, nil
}

// scanEnrolled filters in memory for drivers without JSON operators
func (s *StudentPostgreSQL) scanEnrolled(ctx context.Context, courseID string) ([]*models.Student, error) {
	var matched []*models.Student
	err := s.ForEachBatch(ctx, 200, func(batch []*models.Student) error {
		for _, student := range batch {
			if student.IsEnrolled(courseID) {
				matched = append(matched, student)
			}
		}
		return nil
	})
	return matched, err
}

func (s *StudentPostgreSQL) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Student{})

	if filters.Query != nil && *filters.Query != "" {
		pattern := ContainsPattern(*filters.Query)
		query = query.Where(
			`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count students")
	}

	var students []*models.Student
	query = s.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, handleDBError(err, "list students")
	}

	return students, total, nil
}

func (s *StudentPostgreSQL) ForEachBatch(ctx context.Context, batchSize int, fn func(batch []*models.Student) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	var students []*models.Student
	result := s.db.WithContext(ctx).
		FindInBatches(&students, batchSize, func(tx *gorm.DB, batch int) error {
			return fn(students)
		})
	return handleDBError(result.Error, "iterate students")
}

func (s *StudentPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count students")
	}
	return count, nil
}
