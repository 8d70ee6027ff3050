package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterStudentRequest = validator.StudentRegisterRequest
type LoginRequest = validator.LoginRequest
type UpdateProfileRequest = validator.StudentProfileUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Student   *StudentView  `json:"student,omitempty"`
	Admin     *models.Admin `json:"admin,omitempty"`
}

// StudentView is the serialized form of a student account
type StudentView struct {
	*models.Student
	FullName string `json:"full_name"`
}

func NewStudentView(s *models.Student) *StudentView {
	return &StudentView{Student: s, FullName: s.FullName()}
}

// Identity is the account resolved from a bearer token
type Identity struct {
	Role    models.UserRole
	Student *models.Student
	Admin   *models.Admin
}

func (i *Identity) ID() string {
	if i.Student != nil {
		return i.Student.ID
	}
	if i.Admin != nil {
		return i.Admin.ID
	}
	return ""
}

type CourseListParams struct {
	Category string
	Level    string
	Search   string
	Page     int
	Limit    int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize applies the paging defaults
func (p *CourseListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Current: page, Pages: pages, Total: total}
}

type StudentListParams struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}

func (p *StudentListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

type StudentListResponse struct {
	Students   []*StudentView `json:"students"`
	Pagination Pagination     `json:"pagination"`
}

type CourseListResponse struct {
	Courses    []models.Course `json:"courses"`
	Pagination Pagination      `json:"pagination"`
}

type EnrollResult struct {
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// ModuleProgressResult is returned by complete and reset
type ModuleProgressResult struct {
	ModuleID         string `json:"module_id"`
	Progress         int    `json:"progress"`
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
}

type ProgressResult struct {
	CourseID           string     `json:"course_id"`
	TotalModules       int        `json:"total_modules"`
	CompletedModules   int        `json:"completed_modules"`
	Progress           int        `json:"progress"`
	CompletedModuleIDs []string   `json:"completed_module_ids"`
	LastAccessedModule *string    `json:"last_accessed_module"`
	LastAccessed       *time.Time `json:"last_accessed"`
}

// EnrolledCourseSummary is the course part of an enrollment listing
type EnrolledCourseSummary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Instructor  string             `json:"instructor"`
	Duration    string             `json:"duration"`
	Level       models.CourseLevel `json:"level"`
	Category    string             `json:"category"`
	Thumbnail   string             `json:"thumbnail"`
	Modules     []models.Module    `json:"modules"`
}

type EnrollmentRecord struct {
	Course           *EnrolledCourseSummary   `json:"course"`
	CourseID         string                   `json:"course_id"`
	EnrolledAt       time.Time                `json:"enrolled_at"`
	Progress         int                      `json:"progress"`
	CompletedModules []models.CompletedModule `json:"completed_modules"`
	LastAccessed     *time.Time               `json:"last_accessed"`
}

type StatsOverview struct {
	TotalStudents        int64     `json:"total_students"`
	TotalCourses         int64     `json:"total_courses"`
	TotalEnrollments     int64     `json:"total_enrollments"`
	CompletedEnrollments int64     `json:"completed_enrollments"`
	AverageProgress      float64   `json:"average_progress"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	RegisterStudent(ctx context.Context, req *RegisterStudentRequest) (*AuthResult, error)
	LoginStudent(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	LoginAdmin(ctx context.Context, req *LoginRequest) (*AuthResult, error)

	// ResolveIdentity verifies a token and loads its account, students first
	ResolveIdentity(ctx context.Context, token string) (*Identity, error)

	GetStudentProfile(ctx context.Context, studentID string) (*StudentView, error)
	UpdateStudentProfile(ctx context.Context, studentID string, req *UpdateProfileRequest) (*StudentView, error)
	GetAdminProfile(ctx context.Context, adminID string) (*models.Admin, error)

	// EnsureDefaultAdmin creates the bootstrap admin when none exists
	EnsureDefaultAdmin(ctx context.Context) (*models.Admin, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, adminID string) (*models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, params CourseListParams) (*CourseListResponse, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, adminID string) (*models.Course, error)
	Delete(ctx context.Context, id string, adminID string) error
}

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID string) (*EnrollResult, error)
	CompleteModule(ctx context.Context, studentID, courseID, moduleID string) (*ModuleProgressResult, error)
	ResetModule(ctx context.Context, studentID, courseID, moduleID string) (*ModuleProgressResult, error)
	GetProgress(ctx context.Context, studentID, courseID string) (*ProgressResult, error)
	ReconcileProgress(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, studentID string) ([]EnrollmentRecord, error)
}

type ReportService interface {
	Stats(ctx context.Context, admin *models.Admin) (*StatsOverview, error)
	EnrollmentReport(ctx context.Context, admin *models.Admin) ([]byte, error)
	// ListStudents pages through student accounts, newest first
	ListStudents(ctx context.Context, admin *models.Admin, params StudentListParams) (*StudentListResponse, error)
}

// ServiceManager owns the lifecycle of every service
type ServiceManager interface {
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Auth() AuthService
	Course() CourseService
	Enrollment() EnrollmentService
	Report() ReportService
}

func validationError(errs validator.ValidationErrors) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, errs)
}
