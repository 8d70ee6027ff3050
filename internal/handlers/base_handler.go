package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const serverErrorMessage = "Server error"

// Response is the envelope of every JSON response
type Response struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       interface{}          `json:"data,omitempty"`
	Errors     interface{}          `json:"errors,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse documents the failure form of Response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// BaseHandler carries what every handler needs
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs through the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func (h *BaseHandler) respondError(c *gin.Context, status int, message string, errs interface{}) {
	c.JSON(status, ErrorResponse{Success: false, Message: message, Errors: errs})
}

// bindJSON decodes the body into dest and writes a 400 on malformed input
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.GetLogger(c, h.logger).Debug("Invalid request body", "error", err)
		h.respondError(c, http.StatusBadRequest, "Validation failed", validator.ValidationErrors{{
			Field:   "body",
			Message: "must be valid JSON",
			Rule:    "json",
		}})
		return false
	}
	return true
}

// handleServiceError maps service error categories onto HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		h.respondError(c, http.StatusBadRequest, "Validation failed", validationErrs)
	case services.IsValidationError(err):
		h.respondError(c, http.StatusBadRequest, "Validation failed", nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, services.ErrorMessage(err, "Not authorized"), nil)
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, services.ErrorMessage(err, "Forbidden"), nil)
	case services.IsNotFound(err):
		h.respondError(c, http.StatusNotFound, services.ErrorMessage(err, "Not found"), nil)
	case services.IsConflict(err):
		h.respondError(c, http.StatusBadRequest, services.ErrorMessage(err, "Request conflicts with current state"), nil)
	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		h.respondError(c, http.StatusInternalServerError, serverErrorMessage, nil)
	}
}
