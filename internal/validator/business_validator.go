package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// BusinessValidator handles struct tags plus rules that span several fields
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate runs the struct tags only
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (bv *BusinessValidator) ValidateStudentRegister(req *StudentRegisterRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateLogin(req *LoginRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateProfileUpdate(req *StudentProfileUpdateRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateModuleRules(req.Modules)...)

	return errors
}

func (bv *BusinessValidator) ValidateCourseUpdate(req *CourseUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.Modules != nil {
		errors = append(errors, bv.validateModuleRules(*req.Modules)...)
	}

	return errors
}

// validateModuleRules rejects supplied module ids that repeat within one course
func (bv *BusinessValidator) validateModuleRules(modules []ModuleRequest) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if m.ModuleID == "" {
			continue
		}
		if _, dup := seen[m.ModuleID]; dup {
			errors = append(errors, ValidationError{
				Field:   "modules.module_id",
				Message: "must be unique within a course",
				Value:   m.ModuleID,
				Rule:    "unique",
			})
			continue
		}
		seen[m.ModuleID] = struct{}{}
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("course_level", func(fl validator.FieldLevel) bool {
		return models.CourseLevel(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		switch models.ResourceType(fl.Field().String()) {
		case models.ResourcePDF, models.ResourceVideo, models.ResourceLink, models.ResourceDocument, models.ResourceQuiz:
			return true
		}
		return false
	})

	// Whitespace-only strings count as missing
	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
