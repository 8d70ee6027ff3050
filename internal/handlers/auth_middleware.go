package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

// AuthMiddleware authenticates bearer tokens issued by the auth service
type AuthMiddleware struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Authenticate resolves the bearer token into an identity stored on the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.respondError(c, http.StatusUnauthorized, "Not authorized, no token", nil)
			c.Abort()
			return
		}

		identity, err := m.authService.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			m.handleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxIdentity, identity)
		c.Set(ctxUserID, identity.ID())
		c.Set(ctxUserRole, identity.Role)
		c.Next()
	}
}

// RequireStudent rejects identities that are not students
func (m *AuthMiddleware) RequireStudent() gin.HandlerFunc {
	return m.requireRole(models.RoleStudent, "Not authorized as student")
}

// RequireAdmin rejects identities that are not admins
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.requireRole(models.RoleAdmin, "Not authorized as admin")
}

func (m *AuthMiddleware) requireRole(role models.UserRole, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := currentIdentity(c)
		if identity == nil || identity.Role != role {
			m.respondError(c, http.StatusUnauthorized, message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission checks an admin capability; it must follow RequireAdmin
func (m *AuthMiddleware) RequirePermission(check func(models.AdminPermissions) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := currentAdmin(c)
		if admin == nil || !admin.Can(check) {
			m.respondError(c, http.StatusForbidden, message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func currentIdentity(c *gin.Context) *services.Identity {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil
	}
	identity, _ := v.(*services.Identity)
	return identity
}

func currentStudent(c *gin.Context) *models.Student {
	if identity := currentIdentity(c); identity != nil {
		return identity.Student
	}
	return nil
}

func currentAdmin(c *gin.Context) *models.Admin {
	if identity := currentIdentity(c); identity != nil {
		return identity.Admin
	}
	return nil
}
