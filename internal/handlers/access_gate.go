package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

const (
	AuthCookieName = "gdgoc_auth_token"
	UserCookieName = "gdgoc_user"
)

// AccessGate resolves the session token of a request to a stored user.
type AccessGate struct {
	BaseHandler
	auth services.AuthService
}

func NewAccessGate(authService services.AuthService, logger utils.Logger) *AccessGate {
	return &AccessGate{
		BaseHandler: NewBaseHandler(logger),
		auth:        authService,
	}
}

// Authenticate requires a valid session. The user is re-read from the store on every
// request, so role changes and deletions apply to tokens that are still unexpired.
func (g *AccessGate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := g.auth.Authenticate(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			g.handleServiceError(c, err)
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthenticate attaches the user when a valid token is present and lets
// anonymous requests through otherwise.
func (g *AccessGate) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.FromContext(c, g.logger).Debug("Ignoring invalid optional token", "error", err)
			c.Next()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireAccess rejects users whose access level is not one of levels.
func (g *AccessGate) RequireAccess(levels ...models.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		if !auth.HasAccess(user.Access, levels...) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("User role %s is not authorized to access this route", user.Access),
			})
			return
		}

		c.Next()
	}
}

// RequirePermission rejects users whose role may not perform op.
func (g *AccessGate) RequirePermission(op auth.Operation) gin.HandlerFunc {
	return g.RequireAccess(auth.Allowed(op)...)
}

// tokenFromRequest reads the session cookie first, then a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(AuthCookieName); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func setUser(c *gin.Context, user *models.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
	c.Set("user_role", user.Access)
	c.Set("user_email", user.Email)
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
