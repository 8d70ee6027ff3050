package pkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const (
	seedPassword = "password123"
	seedVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
)

// SeedSummary reports what SeedDevelopmentData inserted
type SeedSummary struct {
	Skipped     bool
	Students    int
	Courses     int
	Enrollments int
}

type seedCourse struct {
	title       string
	description string
	instructor  string
	duration    string
	level       models.CourseLevel
	category    string
	modules     []string
}

type seedEnrollment struct {
	email     string
	course    int
	completed int
}

var seedStudents = []services.RegisterStudentRequest{
	{FirstName: "John", LastName: "Doe", Email: "john.doe@student.com", Password: seedPassword},
	{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@student.com", Password: seedPassword},
	{FirstName: "Alice", LastName: "Johnson", Email: "alice.johnson@student.com", Password: seedPassword},
}

var seedCourses = []seedCourse{
	{
		title:       "Introduction to Web Development",
		description: "Learn the fundamentals of web development including HTML, CSS, and JavaScript.",
		instructor:  "Prof. Sarah Wilson",
		duration:    "8 weeks",
		level:       models.LevelBeginner,
		category:    "Web Development",
		modules:     []string{"Introduction to HTML", "CSS Basics", "JavaScript Fundamentals", "Building Your First Website"},
	},
	{
		title:       "Advanced React Development",
		description: "Master React with hooks, context, performance optimization and modern patterns.",
		instructor:  "Dr. Michael Chen",
		duration:    "12 weeks",
		level:       models.LevelAdvanced,
		category:    "Frontend Development",
		modules:     []string{"React Hooks Deep Dive", "Context API and State Management", "Performance Optimization"},
	},
	{
		title:       "Database Design and MongoDB",
		description: "Learn database design principles and work with document databases.",
		instructor:  "Prof. Emily Davis",
		duration:    "10 weeks",
		level:       models.LevelIntermediate,
		category:    "Database",
		modules:     []string{"Database Fundamentals", "MongoDB Setup and Basics", "Advanced MongoDB Queries", "MongoDB with Node.js"},
	},
	{
		title:       "Node.js Backend Development",
		description: "Build scalable backend applications with Node.js and Express.",
		instructor:  "Mr. David Rodriguez",
		duration:    "14 weeks",
		level:       models.LevelIntermediate,
		category:    "Backend Development",
		modules:     []string{"Node.js Fundamentals", "Express.js Framework", "Authentication and Security"},
	},
	{
		title:       "Machine Learning Fundamentals",
		description: "Introduction to machine learning concepts, algorithms and practical applications.",
		instructor:  "Dr. Lisa Wang",
		duration:    "16 weeks",
		level:       models.LevelAdvanced,
		category:    "Artificial Intelligence",
		modules: []string{
			"Introduction to Machine Learning",
			"Linear Regression and Classification",
			"Neural Networks Basics",
			"Deep Learning with TensorFlow",
			"ML Project: Image Classification",
		},
	},
}

// Indexes point into seedCourses
var seedEnrollments = []seedEnrollment{
	{email: "john.doe@student.com", course: 0, completed: 2},
	{email: "john.doe@student.com", course: 1, completed: 1},
	{email: "jane.smith@student.com", course: 2, completed: 3},
	{email: "jane.smith@student.com", course: 3, completed: 3},
}

func (c seedCourse) request() *services.CreateCourseRequest {
	req := &services.CreateCourseRequest{
		Title:       c.title,
		Description: c.description,
		Instructor:  c.instructor,
		Duration:    c.duration,
		Level:       c.level,
		Category:    c.category,
		VideoURL:    seedVideoURL,
	}
	for i, title := range c.modules {
		req.Modules = append(req.Modules, validator.ModuleRequest{
			Title:    title,
			VideoURL: seedVideoURL,
			Duration: "45 min",
			Order:    i + 1,
			Content:  fmt.Sprintf("Lesson content for %s.", title),
		})
	}
	return req
}

// SeedDevelopmentData fills an empty catalog with sample students, courses and
// enrollments. It goes through the service layer so every record obeys the
// same rules as API traffic. A catalog that already has courses is left alone.
func SeedDevelopmentData(ctx context.Context, repo repositories.Repository, sm services.ServiceManager, logger *slog.Logger) (*SeedSummary, error) {
	existing, err := repo.Course().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	if existing > 0 {
		logger.Info("Catalog already populated, skipping seed", "courses", existing)
		return &SeedSummary{Skipped: true}, nil
	}

	summary := &SeedSummary{}

	studentIDs := make(map[string]string, len(seedStudents))
	for _, req := range seedStudents {
		res, err := sm.Auth().RegisterStudent(ctx, &req)
		switch {
		case err == nil:
			studentIDs[req.Email] = res.Student.ID
			summary.Students++
		case services.IsConflict(err):
			student, getErr := repo.Student().GetByEmail(ctx, req.Email)
			if getErr != nil {
				return nil, fmt.Errorf("load seed student %s: %w", req.Email, getErr)
			}
			studentIDs[req.Email] = student.ID
		default:
			return nil, fmt.Errorf("seed student %s: %w", req.Email, err)
		}
	}

	courses := make([]*models.Course, 0, len(seedCourses))
	for _, sc := range seedCourses {
		course, err := sm.Course().Create(ctx, sc.request(), "seed")
		if err != nil {
			return nil, fmt.Errorf("seed course %q: %w", sc.title, err)
		}
		courses = append(courses, course)
		summary.Courses++
	}

	for _, se := range seedEnrollments {
		studentID := studentIDs[se.email]
		course := courses[se.course]
		if _, err := sm.Enrollment().Enroll(ctx, studentID, course.ID); err != nil {
			return nil, fmt.Errorf("seed enrollment %s in %q: %w", se.email, course.Title, err)
		}
		for _, module := range course.Modules[:se.completed] {
			if _, err := sm.Enrollment().CompleteModule(ctx, studentID, course.ID, module.ModuleID); err != nil {
				return nil, fmt.Errorf("seed progress %s in %q: %w", se.email, course.Title, err)
			}
		}
		summary.Enrollments++
	}

	logger.Info("Seeded development data",
		"students", summary.Students,
		"courses", summary.Courses,
		"enrollments", summary.Enrollments)
	return summary, nil
}
