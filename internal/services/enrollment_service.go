package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type enrollmentService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	now            func() time.Time
}

func NewEnrollmentService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger) EnrollmentService {
	return &enrollmentService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Enroll adds the enrollment to the student and the back-reference to the course atomically
func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*EnrollResult, error) {
	s.logger.Info("Enrolling student", "student_id", studentID, "course_id", courseID)

	var result *EnrollResult
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err := s.getCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		student, err := s.getStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if student.IsEnrolled(courseID) {
			return ErrAlreadyEnrolled
		}

		enrollment := models.NewEnrollment(courseID, s.now())
		student.Enrollments = append(student.Enrollments, enrollment)
		if err := tx.Student().Update(ctx, student); err != nil {
			return fmt.Errorf("failed to save enrollment: %w", err)
		}

		course.AddStudent(studentID)
		if err := tx.Course().Update(ctx, course); err != nil {
			return fmt.Errorf("failed to update course roster: %w", err)
		}

		result = &EnrollResult{
			CourseID:   course.ID,
			Title:      course.Title,
			EnrolledAt: enrollment.EnrolledAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.SafePublish(ctx, s.eventPublisher, s.logger, events.EnrollmentCreated, events.EnrollmentPayload{
		StudentID: studentID,
		CourseID:  courseID,
		At:        result.EnrolledAt,
	})
	s.logger.Info("Student enrolled", "student_id", studentID, "course_id", courseID)

	return result, nil
}

func (s *enrollmentService) CompleteModule(ctx context.Context, studentID, courseID, moduleID string) (*ModuleProgressResult, error) {
	course, err := s.getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	if _, ok := course.FindModule(moduleID); !ok {
		return nil, ErrModuleNotFound
	}

	student, enrollment, err := s.loadEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.HasCompleted(moduleID) {
		return nil, ErrModuleAlreadyCompleted
	}

	previous := enrollment.Progress
	enrollment.Complete(moduleID, s.now())
	syncProgress(enrollment, course)

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	s.publishProgress(ctx, events.ModuleCompleted, studentID, course, enrollment, moduleID, previous)
	s.logger.Info("Module marked as complete",
		"student_id", studentID,
		"course_id", courseID,
		"module_id", moduleID,
		"progress", enrollment.Progress)

	return moduleProgress(moduleID, enrollment, course), nil
}

// ResetModule removes a completion. Resetting a module that was never completed is a no-op.
func (s *enrollmentService) ResetModule(ctx context.Context, studentID, courseID, moduleID string) (*ModuleProgressResult, error) {
	course, err := s.getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	student, enrollment, err := s.loadEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	previous := enrollment.Progress
	removed := enrollment.Reset(moduleID)
	changed := syncProgress(enrollment, course)

	if removed || changed {
		if err := s.repo.Student().Update(ctx, student); err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
	}
	if removed {
		s.publishProgress(ctx, events.ModuleReset, studentID, course, enrollment, moduleID, previous)
	}

	s.logger.Info("Module completion reset",
		"student_id", studentID,
		"course_id", courseID,
		"module_id", moduleID,
		"removed", removed,
		"progress", enrollment.Progress)

	return moduleProgress(moduleID, enrollment, course), nil
}

func (s *enrollmentService) GetProgress(ctx context.Context, studentID, courseID string) (*ProgressResult, error) {
	course, err := s.getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.reconcile(ctx, studentID, course)
	if err != nil {
		return nil, err
	}

	return &ProgressResult{
		CourseID:           courseID,
		TotalModules:       course.TotalModules(),
		CompletedModules:   len(enrollment.CompletedModules),
		Progress:           enrollment.Progress,
		CompletedModuleIDs: enrollment.CompletedModuleIDs(),
		LastAccessedModule: enrollment.LastAccessedModule,
		LastAccessed:       enrollment.LastAccessed,
	}, nil
}

// ReconcileProgress brings the stored progress in line with the current module list.
// Calling it repeatedly has no further effect.
func (s *enrollmentService) ReconcileProgress(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	course, err := s.getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, studentID, course)
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, studentID string) ([]EnrollmentRecord, error) {
	student, err := s.getStudent(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(student.Enrollments))
	for _, e := range student.Enrollments {
		ids = append(ids, e.CourseID)
	}

	courses, err := s.repo.Course().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrolled courses: %w", err)
	}
	byID := make(map[string]*models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	records := make([]EnrollmentRecord, 0, len(student.Enrollments))
	for _, e := range student.Enrollments {
		record := EnrollmentRecord{
			CourseID:         e.CourseID,
			EnrolledAt:       e.EnrolledAt,
			Progress:         e.Progress,
			CompletedModules: e.CompletedModules,
			LastAccessed:     e.LastAccessed,
		}
		if record.CompletedModules == nil {
			record.CompletedModules = []models.CompletedModule{}
		}
		if c, ok := byID[e.CourseID]; ok {
			record.Course = courseSummary(c)
		}
		records = append(records, record)
	}

	return records, nil
}

// ===== HELPERS =====

func (s *enrollmentService) reconcile(ctx context.Context, studentID string, course *models.Course) (*models.Enrollment, error) {
	student, enrollment, err := s.loadEnrollment(ctx, studentID, course.ID)
	if err != nil {
		return nil, err
	}

	previous := enrollment.Progress
	if !syncProgress(enrollment, course) {
		return enrollment, nil
	}

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to save reconciled progress: %w", err)
	}

	s.publishProgress(ctx, events.ProgressReconciled, studentID, course, enrollment, "", previous)
	s.logger.Info("Progress reconciled",
		"student_id", studentID,
		"course_id", course.ID,
		"previous", previous,
		"progress", enrollment.Progress)

	return enrollment, nil
}

// syncProgress drops completions of modules the course no longer has and
// recomputes progress. It reports whether the enrollment changed.
func syncProgress(enrollment *models.Enrollment, course *models.Course) bool {
	pruned := enrollment.Prune(course.ModuleIDSet())
	recomputed := enrollment.Recompute(course.TotalModules())
	return pruned || recomputed
}

// loadEnrollment returns the student and a pointer into its enrollment list
func (s *enrollmentService) loadEnrollment(ctx context.Context, studentID, courseID string) (*models.Student, *models.Enrollment, error) {
	student, err := s.getStudent(ctx, s.repo, studentID)
	if err != nil {
		return nil, nil, err
	}
	idx := student.FindEnrollment(courseID)
	if idx < 0 {
		return nil, nil, ErrNotEnrolled
	}
	return student, &student.Enrollments[idx], nil
}

func (s *enrollmentService) getCourse(ctx context.Context, repo repositories.Repository, courseID string) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *enrollmentService) getStudent(ctx context.Context, repo repositories.Repository, studentID string) (*models.Student, error) {
	student, err := repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *enrollmentService) publishProgress(ctx context.Context, eventType events.EventType, studentID string, course *models.Course, enrollment *models.Enrollment, moduleID string, previous int) {
	events.SafePublish(ctx, s.eventPublisher, s.logger, eventType, events.ProgressPayload{
		StudentID:        studentID,
		CourseID:         course.ID,
		ModuleID:         moduleID,
		Progress:         enrollment.Progress,
		PreviousProgress: previous,
		CompletedModules: len(enrollment.CompletedModules),
		TotalModules:     course.TotalModules(),
	})
}

func moduleProgress(moduleID string, enrollment *models.Enrollment, course *models.Course) *ModuleProgressResult {
	return &ModuleProgressResult{
		ModuleID:         moduleID,
		Progress:         enrollment.Progress,
		CompletedModules: len(enrollment.CompletedModules),
		TotalModules:     course.TotalModules(),
	}
}

func courseSummary(c *models.Course) *EnrolledCourseSummary {
	modules := []models.Module(c.Modules)
	if modules == nil {
		modules = []models.Module{}
	}
	return &EnrolledCourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    c.Category,
		Thumbnail:   c.Thumbnail,
		Modules:     modules,
	}
}
