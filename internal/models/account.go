package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin"
	AdminRoleAdmin      AdminRole = "admin"
)

type StudentProfile struct {
	Bio         string     `json:"bio"`
	Avatar      string     `json:"avatar"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type Student struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	FirstName string `json:"first_name" gorm:"not null;size:50"`
	LastName  string `json:"last_name" gorm:"not null;size:50"`
	Email     string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string `json:"-" gorm:"not null;size:255"`

	// Enrollments are embedded so that a single row update keeps
	// the completed set and the derived progress consistent
	Enrollments datatypes.JSONSlice[Enrollment]    `json:"enrolled_courses" gorm:"type:jsonb"`
	Profile     datatypes.JSONType[StudentProfile] `json:"profile" gorm:"type:jsonb"`

	IsActive  bool       `json:"is_active" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Email = NormalizeEmail(s.Email)
	if s.Enrollments == nil {
		s.Enrollments = datatypes.JSONSlice[Enrollment]{}
	}
	return nil
}

func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// FindEnrollment returns the index of the enrollment for courseID, or -1
func (s *Student) FindEnrollment(courseID string) int {
	for i := range s.Enrollments {
		if s.Enrollments[i].CourseID == courseID {
			return i
		}
	}
	return -1
}

func (s *Student) IsEnrolled(courseID string) bool {
	return s.FindEnrollment(courseID) >= 0
}

// RemoveEnrollment drops every enrollment for courseID and reports whether any was removed
func (s *Student) RemoveEnrollment(courseID string) bool {
	kept := s.Enrollments[:0]
	removed := false
	for _, e := range s.Enrollments {
		if e.CourseID == courseID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.Enrollments = kept
	return removed
}

type AdminPermissions struct {
	CanManageCourses  bool `json:"can_manage_courses"`
	CanManageStudents bool `json:"can_manage_students"`
	CanManageAdmins   bool `json:"can_manage_admins"`
	CanViewAnalytics  bool `json:"can_view_analytics"`
}

// FullPermissions grants every capability
func FullPermissions() AdminPermissions {
	return AdminPermissions{
		CanManageCourses:  true,
		CanManageStudents: true,
		CanManageAdmins:   true,
		CanViewAnalytics:  true,
	}
}

type Admin struct {
	ID          string                               `json:"id" gorm:"primaryKey;size:36"`
	Name        string                               `json:"name" gorm:"not null;size:100"`
	Email       string                               `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password    string                               `json:"-" gorm:"not null;size:255"`
	Role        AdminRole                            `json:"role" gorm:"not null;size:20;default:admin"`
	Permissions datatypes.JSONType[AdminPermissions] `json:"permissions" gorm:"type:jsonb"`

	IsActive  bool       `json:"is_active" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = NormalizeEmail(a.Email)
	if a.Role == "" {
		a.Role = AdminRoleAdmin
	}
	return nil
}

func (a *Admin) Can(check func(AdminPermissions) bool) bool {
	return check(a.Permissions.Data())
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
