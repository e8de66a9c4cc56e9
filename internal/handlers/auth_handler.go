package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

// authResponse is the body of every /auth endpoint: a message plus the payload fields
// at the top level.
type authResponse struct {
	Message string              `json:"message"`
	User    *models.UserSummary `json:"user,omitempty"`
	Admin   *models.UserSummary `json:"admin,omitempty"`
	Email   string              `json:"email,omitempty"`
	Token   string              `json:"token,omitempty"`
}

func sessionResponse(message string, result *services.AuthResult) authResponse {
	user := result.User
	return authResponse{Message: message, User: &user, Token: result.Token}
}

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	cookies     config.CookieConfig
}

func NewAuthHandler(authService services.AuthService, cookies config.CookieConfig, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		cookies:     cookies,
	}
}

// GoogleLogin exchanges a Google ID token for a session
// @Summary Sign in with Google
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.GoogleLoginRequest true "Google ID token"
// @Success 200 {object} authResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req services.GoogleLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.GoogleLogin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	h.LogRequest(c, "User signed in", "user_id", result.User.ID, "access", result.User.Access)
	c.JSON(http.StatusOK, sessionResponse("Signed in successfully", result))
}

// RegisterBuddy records a non-whitelisted email as a Buddy
// @Summary Register as Buddy
// @Tags auth
// @Router /auth/register-buddy [post]
func (h *AuthHandler) RegisterBuddy(c *gin.Context) {
	var req services.RegisterBuddyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	registration, err := h.authService.RegisterBuddy(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Message: "Buddy registered successfully. Please sign in with Google.",
		Email:   registration.Email,
	})
}

// Me returns the current user and refreshes the session
// @Summary Current user
// @Tags auth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	c.JSON(http.StatusOK, sessionResponse("Session refreshed", result))
}

// RegisterAdmin creates or promotes an admin account
// @Summary Register admin
// @Tags auth
// @Router /auth/register-admin [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	caller := h.requireUser(c)
	if caller == nil {
		return
	}

	var req services.RegisterAdminRequest
	if !h.bindJSON(c, &req) {
		return
	}

	registration, err := h.authService.RegisterAdmin(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Admin registered", "admin_id", registration.Admin.ID, "by", caller.ID)
	admin := registration.Admin
	c.JSON(http.StatusCreated, authResponse{
		Message: "Admin registered successfully",
		Admin:   &admin,
		Token:   registration.Token,
	})
}

// Logout clears both session cookies. It succeeds whether or not a session exists.
// @Summary Sign out
// @Tags auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, authResponse{Message: "Logged out successfully"})
}

// setSessionCookies writes the HttpOnly token cookie and the script readable user cookie.
func (h *AuthHandler) setSessionCookies(c *gin.Context, result *services.AuthResult) {
	maxAge := int(h.cookies.MaxAge.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, result.Token, maxAge, "/", "", h.cookies.Secure, true)
	c.SetCookie(UserCookieName, encodeUserCookie(result.User), maxAge, "/", "", h.cookies.Secure, false)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(UserCookieName, "", -1, "/", "", h.cookies.Secure, false)
}

// encodeUserCookie serializes the summary. SetCookie URL-encodes the result.
func encodeUserCookie(summary models.UserSummary) string {
	data, err := json.Marshal(summary)
	if err != nil {
		return ""
	}
	return string(data)
}
