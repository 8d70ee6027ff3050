package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// RegisterStudent creates a student account
// @Summary Register student
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterStudentRequest true "Registration data"
// @Success 201 {object} Response{data=services.AuthResult}
// @Failure 400 {object} ErrorResponse
// @Router /auth/student/register [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req services.RegisterStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Registering student")

	result, err := h.service.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Student registered successfully", result)
}

// LoginStudent exchanges credentials for a token
// @Summary Student login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} Response{data=services.AuthResult}
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} Response
// @Router /auth/student/login [post]
func (h *AuthHandler) LoginStudent(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Student login")

	result, err := h.service.LoginStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", result)
}

// GetStudentProfile returns the authenticated student with enrollments
// @Summary Student profile
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=services.StudentView}
// @Failure 401 {object} ErrorResponse
// @Router /auth/student/profile [get]
func (h *AuthHandler) GetStudentProfile(c *gin.Context) {
	student := currentStudent(c)
	h.LogRequest(c, "Getting student profile", "student_id", student.ID)

	profile, err := h.service.GetStudentProfile(c.Request.Context(), student.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", profile)
}

// UpdateStudentProfile applies a partial profile update
// @Summary Update student profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} Response{data=services.StudentView}
// @Failure 400 {object} ErrorResponse
// @Router /auth/student/profile [put]
func (h *AuthHandler) UpdateStudentProfile(c *gin.Context) {
	student := currentStudent(c)

	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating student profile", "student_id", student.ID)

	profile, err := h.service.UpdateStudentProfile(c.Request.Context(), student.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Profile updated successfully", profile)
}

// ===== ADMIN ENDPOINTS =====

// LoginAdmin exchanges admin credentials for a token
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} Response{data=services.AuthResult}
// @Failure 401 {object} ErrorResponse
// @Router /auth/admin/login [post]
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Admin login")

	result, err := h.service.LoginAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", result)
}

// GetAdminProfile returns the authenticated admin
// @Summary Admin profile
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=models.Admin}
// @Router /auth/admin/profile [get]
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	admin := currentAdmin(c)
	h.LogRequest(c, "Getting admin profile", "admin_id", admin.ID)

	profile, err := h.service.GetAdminProfile(c.Request.Context(), admin.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "", profile)
}

// CreateDefaultAdmin bootstraps the first admin account from configuration
// @Summary Create default admin
// @Tags auth
// @Produce json
// @Success 201 {object} Response{data=models.Admin}
// @Failure 400 {object} ErrorResponse "Admin already exists"
// @Router /auth/admin/create-default [post]
func (h *AuthHandler) CreateDefaultAdmin(c *gin.Context) {
	h.LogRequest(c, "Creating default admin")

	admin, err := h.service.EnsureDefaultAdmin(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Default admin created successfully", admin)
}
