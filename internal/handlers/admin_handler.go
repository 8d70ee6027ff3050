package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	service services.ReportService
}

func NewAdminHandler(service services.ReportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetStats returns dashboard totals
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Success 200 {object} Response{data=services.StatsOverview}
// @Failure 403 {object} ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	admin := currentAdmin(c)
	h.LogRequest(c, "Getting stats", "admin_id", admin.ID)

	stats, err := h.service.Stats(c.Request.Context(), admin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", stats)
}

// ListStudents returns a page of student accounts, newest first
// @Summary List students
// @Tags admin
// @Produce json
// @Param search query string false "Matches first name, last name or email"
// @Param active query bool false "Filter on account status"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} Response{data=[]services.StudentView}
// @Failure 403 {object} ErrorResponse
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	admin := currentAdmin(c)

	params := services.StudentListParams{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", services.DefaultPageSize),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "Validation failed", validator.ValidationErrors{{
				Field:   "active",
				Message: "must be true or false",
				Value:   raw,
				Rule:    "boolean",
			}})
			return
		}
		params.Active = &active
	}

	h.LogRequest(c, "Listing students", "admin_id", admin.ID, "page", params.Page)

	result, err := h.service.ListStudents(c.Request.Context(), admin, params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       result.Students,
		Pagination: &result.Pagination,
	})
}

// ExportEnrollments streams the enrollment report as an xlsx workbook
// @Summary Export enrollments
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /admin/reports/enrollments [get]
func (h *AdminHandler) ExportEnrollments(c *gin.Context) {
	admin := currentAdmin(c)
	h.LogRequest(c, "Exporting enrollments", "admin_id", admin.ID)

	data, err := h.service.EnrollmentReport(c.Request.Context(), admin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("enrollments-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
