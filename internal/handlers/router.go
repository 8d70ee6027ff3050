package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const serviceName = "learning-service"

// RouterConfig holds the HTTP-level settings of the router
type RouterConfig struct {
	Version         string
	Environment     string
	LoginRateLimit  int
	RateLimitWindow time.Duration
}

type HandlerManager struct {
	serviceManager    services.ServiceManager
	authHandler       *AuthHandler
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	adminHandler      *AdminHandler
	authMiddleware    *AuthMiddleware
	loginLimiter      gin.HandlerFunc
	config            RouterConfig
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	cacheManager *cache.CacheManager,
	config RouterConfig,
	logger utils.Logger,
) *HandlerManager {
	if config.RateLimitWindow <= 0 {
		config.RateLimitWindow = time.Minute
	}

	var rateLimitHelper *cache.CacheHelper
	if cacheManager != nil {
		rateLimitHelper = cacheManager.RateLimit
	}

	return &HandlerManager{
		serviceManager:    serviceManager,
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		adminHandler:      NewAdminHandler(serviceManager.Report(), logger),
		authMiddleware:    NewAuthMiddleware(serviceManager.Auth(), logger),
		loginLimiter:      RateLimitMiddleware(rateLimitHelper, config.LoginRateLimit, config.RateLimitWindow, logger),
		config:            config,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	auth := hm.authMiddleware
	student := []gin.HandlerFunc{auth.Authenticate(), auth.RequireStudent()}
	admin := []gin.HandlerFunc{auth.Authenticate(), auth.RequireAdmin()}

	router.GET("/", hm.root)

	api := router.Group("/api")
	{
		api.GET("/health", hm.health)

		// Student auth routes
		studentAuth := api.Group("/auth/student")
		{
			studentAuth.POST("/register", hm.authHandler.RegisterStudent)
			studentAuth.POST("/login", hm.loginLimiter, hm.authHandler.LoginStudent)
			studentAuth.GET("/profile", append(student, hm.authHandler.GetStudentProfile)...)
			studentAuth.PUT("/profile", append(student, hm.authHandler.UpdateStudentProfile)...)
		}

		// Admin auth routes
		adminAuth := api.Group("/auth/admin")
		{
			adminAuth.POST("/login", hm.loginLimiter, hm.authHandler.LoginAdmin)
			adminAuth.GET("/profile", append(admin, hm.authHandler.GetAdminProfile)...)
			adminAuth.POST("/create-default", hm.authHandler.CreateDefaultAdmin)
		}

		// Course routes
		courses := api.Group("/courses")
		{
			// Public catalog
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)

			// Catalog management - Admins only
			courses.POST("", append(admin, hm.courseHandler.CreateCourse)...)
			courses.PUT("/:id", append(admin, hm.courseHandler.UpdateCourse)...)
			courses.DELETE("/:id", append(admin, hm.courseHandler.DeleteCourse)...)

			// Enrollment and progress - Students only
			courses.GET("/student/enrolled", append(student, hm.enrollmentHandler.GetEnrolledCourses)...)
			courses.POST("/:id/enroll", append(student, hm.enrollmentHandler.Enroll)...)
			courses.POST("/:id/modules/:moduleId/complete", append(student, hm.enrollmentHandler.CompleteModule)...)
			courses.DELETE("/:id/modules/:moduleId/complete", append(student, hm.enrollmentHandler.ResetModule)...)
			courses.GET("/:id/progress", append(student, hm.enrollmentHandler.GetProgress)...)
		}

		// Admin console - each route checks its own permission
		console := api.Group("/admin")
		console.Use(admin...)
		{
			analytics := auth.RequirePermission(func(p models.AdminPermissions) bool { return p.CanViewAnalytics }, "Not authorized to view analytics")
			manageStudents := auth.RequirePermission(func(p models.AdminPermissions) bool { return p.CanManageStudents }, "Not authorized to manage students")

			console.GET("/stats", analytics, hm.adminHandler.GetStats)
			console.GET("/reports/enrollments", analytics, hm.adminHandler.ExportEnrollments)
			console.GET("/students", manageStudents, hm.adminHandler.ListStudents)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Message: "Route not found"})
	})
}

func (hm *HandlerManager) root(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "EduLearn API is running",
		Data: gin.H{
			"service":     serviceName,
			"version":     hm.config.Version,
			"environment": hm.config.Environment,
		},
	})
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, Response{
		Success: code == http.StatusOK,
		Data: gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
