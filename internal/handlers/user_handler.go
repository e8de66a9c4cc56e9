package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	users    services.UserService
	progress services.ProgressService
}

func NewUserHandler(users services.UserService, progress services.ProgressService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
		progress:    progress,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param access query string false "Filter by access level"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	var req services.ListUsersRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.users.List(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateAccess changes the access level of a user
// @Summary Update user access
// @Tags users
// @Router /users/{id}/access [put]
func (h *UserHandler) UpdateAccess(c *gin.Context) {
	actor := h.requireUser(c)
	if actor == nil {
		return
	}

	var req services.UpdateAccessRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateAccess(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User access updated", "user_id", user.ID, "access", user.Access, "by", actor.ID)
	c.JSON(http.StatusOK, user)
}

// MyProgress lists the paths the caller has started
// @Summary My progress
// @Tags users
// @Router /users/me/progress [get]
func (h *UserHandler) MyProgress(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	progress, err := h.progress.MyProgress(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
