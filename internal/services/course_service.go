package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewCourseService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, adminID string) (*models.Course, error) {
	s.logger.Info("Creating course", "admin_id", adminID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Duration:    req.Duration,
		Level:       req.Level,
		Category:    req.Category,
		VideoURL:    req.VideoURL,
		Thumbnail:   req.Thumbnail,
		Modules:     validator.ModulesToModel(req.Modules),
	}
	course.PrepareModules()

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publish(ctx, events.CourseCreated, course, 0)
	s.logger.Info("Course created successfully", "course_id", course.ID, "modules", course.TotalModules())

	view := course.PublicView()
	return &view, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.getCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	view := course.PublicView()
	return &view, nil
}

func (s *courseService) List(ctx context.Context, params CourseListParams) (*CourseListResponse, error) {
	params.Normalize()

	filters := repositories.CourseFilters{
		Limit:     params.Limit,
		Offset:    (params.Page - 1) * params.Limit,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if params.Category != "" {
		filters.Category = &params.Category
	}
	if params.Level != "" {
		level := models.CourseLevel(params.Level)
		filters.Level = &level
	}
	if params.Search != "" {
		filters.Search = &params.Search
	}

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	views := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		views = append(views, c.PublicView())
	}

	return &CourseListResponse{
		Courses:    views,
		Pagination: NewPagination(params.Page, params.Limit, total),
	}, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, adminID string) (*models.Course, error) {
	s.logger.Info("Updating course", "course_id", id, "admin_id", adminID)

	if errs := s.validator.GetBusinessValidator().ValidateCourseUpdate(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	course, err := s.getCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	applyCourseUpdate(course, req)

	if err := s.repo.Course().Update(ctx, course); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.publish(ctx, events.CourseUpdated, course, 0)
	s.logger.Info("Course updated successfully", "course_id", course.ID)

	view := course.PublicView()
	return &view, nil
}

// Delete removes the course and every enrollment that references it in one transaction
func (s *courseService) Delete(ctx context.Context, id string, adminID string) error {
	s.logger.Info("Deleting course", "course_id", id, "admin_id", adminID)

	var (
		course   *models.Course
		affected int
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		course, err = s.getCourse(ctx, tx, id)
		if err != nil {
			return err
		}

		students, err := tx.Student().FindByEnrolledCourse(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to find enrolled students: %w", err)
		}
		for _, student := range students {
			if !student.RemoveEnrollment(id) {
				continue
			}
			if err := tx.Student().Update(ctx, student); err != nil {
				return fmt.Errorf("failed to remove enrollment for student %s: %w", student.ID, err)
			}
			affected++
		}

		if err := tx.Course().Delete(ctx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CourseDeleted, course, affected)
	s.logger.Info("Course deleted successfully", "course_id", id, "affected_students", affected)
	return nil
}

// ===== HELPERS =====

func (s *courseService) getCourse(ctx context.Context, repo repositories.Repository, id string) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) publish(ctx context.Context, eventType events.EventType, course *models.Course, affected int) {
	events.SafePublish(ctx, s.eventPublisher, s.logger, eventType, events.CoursePayload{
		CourseID:         course.ID,
		Title:            course.Title,
		TotalModules:     course.TotalModules(),
		AffectedStudents: affected,
	})
}

func applyCourseUpdate(course *models.Course, req *UpdateCourseRequest) {
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.VideoURL != nil {
		course.VideoURL = *req.VideoURL
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	if req.Modules != nil {
		course.Modules = validator.ModulesToModel(*req.Modules)
		course.PrepareModules()
	}
}
