package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

const (
	statsCacheKey    = "overview"
	reportSheet      = "Enrollments"
	reportBatchSize  = 200
	reportTimeLayout = "2006-01-02 15:04:05"
)

var reportHeader = []interface{}{
	"Student", "Email", "Course", "Enrolled At", "Completed Modules", "Total Modules", "Progress (%)",
}

type reportService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	logger       *slog.Logger
	now          func() time.Time
}

func NewReportService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) ReportService {
	return &reportService{
		repo:         repo,
		cacheManager: cacheManager,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Stats(ctx context.Context, admin *models.Admin) (*StatsOverview, error) {
	if err := requireAnalytics(admin); err != nil {
		return nil, err
	}

	var stats StatsOverview
	err := s.cacheManager.Stats.CacheOrExecute(ctx, statsCacheKey, &stats, s.cacheManager.CourseTTL, func() (interface{}, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &stats, nil
}

func (s *reportService) computeStats(ctx context.Context) (*StatsOverview, error) {
	stats := &StatsOverview{GeneratedAt: s.now()}

	var err error
	if stats.TotalStudents, err = s.repo.Student().Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.repo.Course().Count(ctx); err != nil {
		return nil, err
	}

	var progressSum int64
	err = s.repo.Student().ForEachBatch(ctx, reportBatchSize, func(batch []*models.Student) error {
		for _, student := range batch {
			for _, e := range student.Enrollments {
				stats.TotalEnrollments++
				progressSum += int64(e.Progress)
				if e.Progress >= 100 {
					stats.CompletedEnrollments++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stats.TotalEnrollments > 0 {
		avg := float64(progressSum) / float64(stats.TotalEnrollments)
		stats.AverageProgress = math.Round(avg*100) / 100
	}

	s.logger.Debug("Stats computed",
		"students", stats.TotalStudents,
		"courses", stats.TotalCourses,
		"enrollments", stats.TotalEnrollments)
	return stats, nil
}

// EnrollmentReport renders one row per enrollment into an xlsx workbook
func (s *reportService) EnrollmentReport(ctx context.Context, admin *models.Admin) ([]byte, error) {
	if err := requireAnalytics(admin); err != nil {
		return nil, err
	}
	s.logger.Info("Generating enrollment report", "admin_id", admin.ID)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	courses := make(map[string]reportCourse)
	row := 2
	err := s.repo.Student().ForEachBatch(ctx, reportBatchSize, func(batch []*models.Student) error {
		if err := s.loadCourses(ctx, batch, courses); err != nil {
			return err
		}

		for _, student := range batch {
			for _, e := range student.Enrollments {
				cell, err := excelize.CoordinatesToCellName(1, row)
				if err != nil {
					return err
				}
				course := courses[e.CourseID]
				values := []interface{}{
					student.FullName(),
					student.Email,
					course.title,
					e.EnrolledAt.UTC().Format(reportTimeLayout),
					len(e.CompletedModules),
					course.totalModules,
					e.Progress,
				}
				if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
					return err
				}
				row++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Enrollment report generated", "rows", row-2)
	return buf.Bytes(), nil
}

type reportCourse struct {
	title        string
	totalModules int
}

// loadCourses fills known for course ids referenced by batch that are not loaded yet.
// Deleted courses stay in the map with empty values.
func (s *reportService) loadCourses(ctx context.Context, batch []*models.Student, known map[string]reportCourse) error {
	var missing []string
	for _, student := range batch {
		for _, e := range student.Enrollments {
			if _, ok := known[e.CourseID]; ok {
				continue
			}
			known[e.CourseID] = reportCourse{}
			missing = append(missing, e.CourseID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	courses, err := s.repo.Course().GetByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for _, c := range courses {
		known[c.ID] = reportCourse{title: c.Title, totalModules: c.TotalModules()}
	}
	return nil
}

func (s *reportService) ListStudents(ctx context.Context, admin *models.Admin, params StudentListParams) (*StudentListResponse, error) {
	if admin == nil || !admin.Can(func(p models.AdminPermissions) bool { return p.CanManageStudents }) {
		return nil, ErrStudentsForbidden
	}
	params.Normalize()

	filters := repositories.StudentFilters{
		IsActive: params.Active,
		Limit:    params.Limit,
		Offset:   (params.Page - 1) * params.Limit,
	}
	if params.Search != "" {
		filters.Query = &params.Search
	}

	students, total, err := s.repo.Student().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	views := make([]*StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, NewStudentView(student))
	}

	return &StudentListResponse{
		Students:   views,
		Pagination: NewPagination(params.Page, params.Limit, total),
	}, nil
}

func requireAnalytics(admin *models.Admin) error {
	if admin == nil || !admin.Can(func(p models.AdminPermissions) bool { return p.CanViewAnalytics }) {
		return ErrAnalyticsForbidden
	}
	return nil
}
