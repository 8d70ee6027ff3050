package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func validCourse() *CourseCreateRequest {
	return &CourseCreateRequest{
		Title:       "Go Basics",
		Description: "Learn Go",
		Instructor:  "Grace Hopper",
		Duration:    "3 weeks",
		Level:       models.LevelBeginner,
		Category:    "Programming",
		VideoURL:    "https://videos.example.com/intro",
		Modules: []ModuleRequest{
			{Title: "Intro", Order: 1},
			{Title: "Types", Order: 2, Resources: []ResourceRequest{{Title: "Notes", URL: "https://example.com/notes.pdf", Type: models.ResourcePDF}}},
		},
	}
}

func fields(errs ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateStudentRegister(t *testing.T) {
	bv := New().GetBusinessValidator()

	assert.Empty(t, bv.ValidateStudentRegister(&StudentRegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1",
	}))

	errs := bv.ValidateStudentRegister(&StudentRegisterRequest{
		FirstName: "   ", LastName: "Lovelace", Email: "not-an-email", Password: "123",
	})
	assert.ElementsMatch(t, []string{"first_name", "email", "password"}, fields(errs))

	for _, e := range errs {
		switch e.Field {
		case "first_name":
			assert.Equal(t, "is required", e.Message)
		case "email":
			assert.Equal(t, "must be a valid email", e.Message)
		case "password":
			assert.Equal(t, "must be at least 6 characters long", e.Message)
		}
	}
}

func TestValidateCourseCreate(t *testing.T) {
	bv := New().GetBusinessValidator()

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, bv.ValidateCourseCreate(validCourse()))
	})

	t.Run("nested field paths", func(t *testing.T) {
		req := validCourse()
		req.Level = "Expert"
		req.Modules[1].Title = ""
		req.Modules[1].Resources[0].Type = "podcast"

		errs := bv.ValidateCourseCreate(req)
		assert.ElementsMatch(t, []string{"level", "modules[1].title", "modules[1].resources[0].type"}, fields(errs))
	})

	t.Run("duplicate module ids", func(t *testing.T) {
		req := validCourse()
		req.Modules[0].ModuleID = "m1"
		req.Modules[1].ModuleID = "m1"

		errs := bv.ValidateCourseCreate(req)
		require.Len(t, errs, 1)
		assert.Equal(t, "unique", errs[0].Rule)
		assert.Equal(t, "m1", errs[0].Value)
	})

	t.Run("module order must be positive", func(t *testing.T) {
		req := validCourse()
		req.Modules[0].Order = 0

		errs := bv.ValidateCourseCreate(req)
		assert.Equal(t, []string{"modules[0].order"}, fields(errs))
	})
}

func TestValidateCourseUpdate(t *testing.T) {
	bv := New().GetBusinessValidator()

	assert.Empty(t, bv.ValidateCourseUpdate(&CourseUpdateRequest{}))

	blank := " "
	level := models.CourseLevel("Expert")
	errs := bv.ValidateCourseUpdate(&CourseUpdateRequest{Title: &blank, Level: &level})
	assert.ElementsMatch(t, []string{"title", "level"}, fields(errs))

	modules := []ModuleRequest{{ModuleID: "a", Title: "A", Order: 1}, {ModuleID: "a", Title: "B", Order: 2}}
	errs = bv.ValidateCourseUpdate(&CourseUpdateRequest{Modules: &modules})
	assert.Equal(t, []string{"modules.module_id"}, fields(errs))
}

func TestValidationErrorsMessage(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: email is required", ValidationErrors{{Field: "email", Message: "is required"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors", ValidationErrors{{}, {}}.Error())
}

func TestModulesToModel(t *testing.T) {
	got := ModulesToModel(validCourse().Modules)
	require.Len(t, got, 2)
	assert.Equal(t, "Types", got[1].Title)
	assert.Equal(t, models.ResourcePDF, got[1].Resources[0].Type)
}
