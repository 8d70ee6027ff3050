package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	service services.EnrollmentService
}

func NewEnrollmentHandler(service services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Enroll enrolls the authenticated student in a course
// @Summary Enroll in course
// @Tags enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} Response{data=services.EnrollResult}
// @Failure 400 {object} ErrorResponse "Already enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	student := currentStudent(c)
	courseID := c.Param("id")
	h.LogRequest(c, "Enrolling in course", "student_id", student.ID, "course_id", courseID)

	result, err := h.service.Enroll(c.Request.Context(), student.ID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Successfully enrolled in course", result)
}

// GetEnrolledCourses lists the student's enrollments with course details
// @Summary Enrolled courses
// @Tags enrollments
// @Produce json
// @Success 200 {object} Response{data=[]services.EnrollmentRecord}
// @Router /courses/student/enrolled [get]
func (h *EnrollmentHandler) GetEnrolledCourses(c *gin.Context) {
	student := currentStudent(c)
	h.LogRequest(c, "Listing enrolled courses", "student_id", student.ID)

	records, err := h.service.ListEnrollments(c.Request.Context(), student.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", records)
}

// CompleteModule marks a module as completed
// @Summary Complete module
// @Tags enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} Response{data=services.ModuleProgressResult}
// @Failure 400 {object} ErrorResponse "Not enrolled or already completed"
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/modules/{moduleId}/complete [post]
func (h *EnrollmentHandler) CompleteModule(c *gin.Context) {
	student := currentStudent(c)
	courseID, moduleID := c.Param("id"), c.Param("moduleId")
	h.LogRequest(c, "Completing module", "student_id", student.ID, "course_id", courseID, "module_id", moduleID)

	result, err := h.service.CompleteModule(c.Request.Context(), student.ID, courseID, moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Module marked as complete", result)
}

// ResetModule removes a module completion
// @Summary Reset module completion
// @Tags enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} Response{data=services.ModuleProgressResult}
// @Failure 400 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/modules/{moduleId}/complete [delete]
func (h *EnrollmentHandler) ResetModule(c *gin.Context) {
	student := currentStudent(c)
	courseID, moduleID := c.Param("id"), c.Param("moduleId")
	h.LogRequest(c, "Resetting module", "student_id", student.ID, "course_id", courseID, "module_id", moduleID)

	result, err := h.service.ResetModule(c.Request.Context(), student.ID, courseID, moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Module completion reset", result)
}

// GetProgress returns the student's progress in a course
// @Summary Course progress
// @Tags enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} Response{data=services.ProgressResult}
// @Failure 400 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/progress [get]
func (h *EnrollmentHandler) GetProgress(c *gin.Context) {
	student := currentStudent(c)
	courseID := c.Param("id")
	h.LogRequest(c, "Getting progress", "student_id", student.ID, "course_id", courseID)

	result, err := h.service.GetProgress(c.Request.Context(), student.ID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", result)
}
