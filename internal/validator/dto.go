package validator

import (
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// StudentRegisterRequest is the body of POST /api/auth/student/register
type StudentRegisterRequest struct {
	FirstName string `json:"first_name" validate:"not_blank,max=50"`
	LastName  string `json:"last_name" validate:"not_blank,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is shared by student and admin login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type StudentProfileUpdateRequest struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,not_blank,max=50"`
	LastName    *string    `json:"last_name" validate:"omitempty,not_blank,max=50"`
	Bio         *string    `json:"bio" validate:"omitempty,max=500"`
	Avatar      *string    `json:"avatar"`
	Phone       *string    `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

type ResourceRequest struct {
	Title string              `json:"title" validate:"not_blank,max=200"`
	URL   string              `json:"url" validate:"not_blank"`
	Type  models.ResourceType `json:"type" validate:"required,resource_type"`
}

type ModuleRequest struct {
	ModuleID    string            `json:"module_id" validate:"omitempty,max=64"`
	Title       string            `json:"title" validate:"not_blank,max=200"`
	Description string            `json:"description" validate:"omitempty,max=500"`
	VideoURL    string            `json:"video_url"`
	Duration    string            `json:"duration" validate:"omitempty,max=50"`
	Order       int               `json:"order" validate:"min=1"`
	Content     string            `json:"content"`
	Resources   []ResourceRequest `json:"resources" validate:"omitempty,dive"`
}

// CourseCreateRequest is the body of POST /api/courses
type CourseCreateRequest struct {
	Title       string             `json:"title" validate:"not_blank,max=200"`
	Description string             `json:"description" validate:"not_blank,max=1000"`
	Instructor  string             `json:"instructor" validate:"not_blank,max=100"`
	Duration    string             `json:"duration" validate:"not_blank,max=50"`
	Level       models.CourseLevel `json:"level" validate:"required,course_level"`
	Category    string             `json:"category" validate:"not_blank,max=100"`
	VideoURL    string             `json:"video_url" validate:"not_blank,max=500"`
	Thumbnail   string             `json:"thumbnail"`
	Modules     []ModuleRequest    `json:"modules" validate:"omitempty,dive"`
}

// CourseUpdateRequest carries only the fields to change
type CourseUpdateRequest struct {
	Title       *string             `json:"title" validate:"omitempty,not_blank,max=200"`
	Description *string             `json:"description" validate:"omitempty,not_blank,max=1000"`
	Instructor  *string             `json:"instructor" validate:"omitempty,not_blank,max=100"`
	Duration    *string             `json:"duration" validate:"omitempty,not_blank,max=50"`
	Level       *models.CourseLevel `json:"level" validate:"omitempty,course_level"`
	Category    *string             `json:"category" validate:"omitempty,not_blank,max=100"`
	VideoURL    *string             `json:"video_url" validate:"omitempty,not_blank,max=500"`
	Thumbnail   *string             `json:"thumbnail"`
	Modules     *[]ModuleRequest    `json:"modules" validate:"omitempty,dive"`
}

func (r ModuleRequest) ToModel() models.Module {
	resources := make([]models.Resource, 0, len(r.Resources))
	for _, res := range r.Resources {
		resources = append(resources, models.Resource{Title: res.Title, URL: res.URL, Type: res.Type})
	}
	return models.Module{
		ModuleID:    r.ModuleID,
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		Duration:    r.Duration,
		Order:       r.Order,
		Content:     r.Content,
		Resources:   resources,
	}
}

func ModulesToModel(reqs []ModuleRequest) []models.Module {
	out := make([]models.Module, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ToModel())
	}
	return out
}
