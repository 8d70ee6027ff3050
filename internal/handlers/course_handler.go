package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListCourses returns a page of courses, newest first
// @Summary List courses
// @Tags courses
// @Produce json
// @Param category query string false "Case-insensitive category substring"
// @Param level query string false "Beginner, Intermediate or Advanced"
// @Param search query string false "Matches title, description or instructor"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} Response{data=[]models.Course}
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	params := services.CourseListParams{
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", services.DefaultPageSize),
	}

	h.LogRequest(c, "Listing courses", "page", params.Page, "limit", params.Limit)

	result, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       result.Courses,
		Pagination: &result.Pagination,
	})
}

// GetCourse returns one course
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} Response{data=models.Course}
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting course", "course_id", id)

	course, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", course)
}

// CreateCourse adds a course to the catalog
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body services.CreateCourseRequest true "Course data"
// @Success 201 {object} Response{data=models.Course}
// @Failure 400 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	admin := currentAdmin(c)
	h.LogRequest(c, "Creating course", "admin_id", admin.ID)

	course, err := h.service.Create(c.Request.Context(), &req, admin.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Course created successfully", course)
}

// UpdateCourse changes the supplied fields of a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body services.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Course}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	admin := currentAdmin(c)
	h.LogRequest(c, "Updating course", "course_id", id, "admin_id", admin.ID)

	course, err := h.service.Update(c.Request.Context(), id, &req, admin.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Course updated successfully", course)
}

// DeleteCourse removes a course and every enrollment in it
// @Summary Delete course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	admin := currentAdmin(c)
	h.LogRequest(c, "Deleting course", "course_id", id, "admin_id", admin.ID)

	if err := h.service.Delete(c.Request.Context(), id, admin.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Course deleted successfully", nil)
}

// queryInt parses a positive integer query parameter, falling back on bad input
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
