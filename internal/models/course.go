package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

func (l CourseLevel) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourcePDF      ResourceType = "pdf"
	ResourceVideo    ResourceType = "video"
	ResourceLink     ResourceType = "link"
	ResourceDocument ResourceType = "document"
	ResourceQuiz     ResourceType = "quiz"
)

type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// Module is one unit of course content, embedded in its course
type Module struct {
	ModuleID    string     `json:"module_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	VideoURL    string     `json:"video_url,omitempty"`
	Duration    string     `json:"duration,omitempty"`
	Order       int        `json:"order"`
	Content     string     `json:"content,omitempty"`
	Resources   []Resource `json:"resources,omitempty"`
}

type Course struct {
	ID          string      `json:"id" gorm:"primaryKey;size:36"`
	Title       string      `json:"title" gorm:"not null;size:200;index"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Instructor  string      `json:"instructor" gorm:"not null;size:100"`
	Duration    string      `json:"duration" gorm:"not null;size:50"`
	Level       CourseLevel `json:"level" gorm:"not null;size:20;index"`
	Category    string      `json:"category" gorm:"not null;size:100;index"`
	VideoURL    string      `json:"video_url" gorm:"not null;size:500"`
	Thumbnail   string      `json:"thumbnail" gorm:"type:text;default:''"`

	Modules          datatypes.JSONSlice[Module] `json:"modules" gorm:"type:jsonb"`
	EnrolledStudents datatypes.JSONSlice[string] `json:"enrolled_students,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Modules == nil {
		c.Modules = datatypes.JSONSlice[Module]{}
	}
	if c.EnrolledStudents == nil {
		c.EnrolledStudents = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (c *Course) TotalModules() int {
	return len(c.Modules)
}

// FindModule returns the module with the given id
func (c *Course) FindModule(moduleID string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ModuleID == moduleID {
			return m, true
		}
	}
	return Module{}, false
}

func (c *Course) ModuleIDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		set[m.ModuleID] = struct{}{}
	}
	return set
}

// PrepareModules assigns ids to modules that lack one and sorts them by order
func (c *Course) PrepareModules() {
	for i := range c.Modules {
		if c.Modules[i].ModuleID == "" {
			c.Modules[i].ModuleID = uuid.NewString()
		}
	}
	sort.SliceStable(c.Modules, func(i, j int) bool {
		return c.Modules[i].Order < c.Modules[j].Order
	})
}

func (c *Course) HasStudent(studentID string) bool {
	for _, id := range c.EnrolledStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

func (c *Course) AddStudent(studentID string) {
	if !c.HasStudent(studentID) {
		c.EnrolledStudents = append(c.EnrolledStudents, studentID)
	}
}

// PublicView returns a copy without the enrolled-student back-references
func (c Course) PublicView() Course {
	c.EnrolledStudents = nil
	return c
}
