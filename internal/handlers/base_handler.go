package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// statusForKind maps the service error taxonomy onto HTTP.
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindConflict:
		return http.StatusBadRequest
	case services.KindAuthentication:
		return http.StatusUnauthorized
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	hasDetails := errors.As(err, &validationErrors)

	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		status := statusForKind(serviceErr.Kind)
		if status >= http.StatusInternalServerError {
			h.LogError(c, err, "Service failure", "kind", serviceErr.Kind.String())
		}
		resp := ErrorResponse{Message: serviceErr.Message}
		if hasDetails {
			resp.Details = validationErrors
		}
		c.JSON(status, resp)
		return
	}

	if hasDetails {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	h.LogError(c, err, "Unexpected service error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "Internal server error",
	})
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0
	}
	return uint(id)
}

// bindJSON binds the body and answers 400 on malformed input.
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// bindBody binds JSON or form bodies by content type, for endpoints that also take uploads.
func (h *BaseHandler) bindBody(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBind(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (h *BaseHandler) bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// requireUser returns the user attached by the access gate, answering 401 when absent.
func (h *BaseHandler) requireUser(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}
	return user
}

// optionalUser returns the user attached by the optional gate, or nil for anonymous callers.
func optionalUser(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}
