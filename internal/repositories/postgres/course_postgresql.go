package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	tracker      *invalidationTracker
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, tracker *invalidationTracker) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		tracker:      tracker,
	}
}

type courseListResult struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	c.tracker.coursesChanged(ctx, course.ID)
	return nil
}

// GetByID reads through the course cache unless running inside a transaction
func (c *CoursePostgreSQL) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if c.tracker.inTransaction() {
		return c.fetchByID(ctx, id)
	}

	var course models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, c.cacheManager.CourseTTL, func() (interface{}, error) {
		return c.fetchByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) fetchByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, handleDBError(err, "get course")
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Course, error) {
	if len(ids) == 0 {
		return []*models.Course{}, nil
	}

	var courses []*models.Course
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, handleDBError(err, "get courses")
	}
	return courses, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	if c.tracker.inTransaction() {
		return c.fetchList(ctx, filters)
	}

	var result courseListResult
	err := c.cacheManager.Course.CacheOrExecute(ctx, listCacheKey(filters), &result, c.cacheManager.CourseTTL, func() (interface{}, error) {
		courses, total, err := c.fetchList(ctx, filters)
		if err != nil {
			return nil, err
		}
		return &courseListResult{Courses: courses, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	if result.Courses == nil {
		result.Courses = []*models.Course{}
	}
	return result.Courses, result.Total, nil
}

func (c *CoursePostgreSQL) fetchList(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.applyCourseFilters(c.db.WithContext(ctx).Model(&models.Course{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	courses := []*models.Course{}
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) applyCourseFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.Category != nil && *filters.Category != "" {
		query = query.Where(`LOWER(category) LIKE ? ESCAPE '\'`, ContainsPattern(*filters.Category))
	}
	if filters.Level != nil && *filters.Level != "" {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := ContainsPattern(*filters.Search)
		query = query.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(instructor) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	return query
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	result := c.db.WithContext(ctx).
		Model(course).
		Select("*").
		Omit("id", "created_at").
		Updates(course)
	if result.Error != nil {
		return handleDBError(result.Error, "update course")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update course")
	}
	c.tracker.coursesChanged(ctx, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Course{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete course")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete course")
	}
	c.tracker.coursesChanged(ctx, id)
	return nil
}

func (c *CoursePostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count courses")
	}
	return count, nil
}

func listCacheKey(filters repositories.CourseFilters) string {
	raw, _ := json.Marshal(filters)
	sum := sha256.Sum256(raw)
	return "list:" + hex.EncodeToString(sum[:8])
}
