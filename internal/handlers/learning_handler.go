package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

// LearningHandler serves paths, modules and lectures.
type LearningHandler struct {
	BaseHandler
	service  services.LearningService
	uploader *Uploader
}

func NewLearningHandler(service services.LearningService, uploader *Uploader, logger utils.Logger) *LearningHandler {
	return &LearningHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		uploader:    uploader,
	}
}

// ===== PATHS =====

func (h *LearningHandler) ListPaths(c *gin.Context) {
	var page services.PageRequest
	if !h.bindQuery(c, &page) {
		return
	}

	resp, err := h.service.ListPaths(c.Request.Context(), page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LearningHandler) GetPath(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	path, err := h.service.GetPath(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (h *LearningHandler) CreatePath(c *gin.Context) {
	var req services.PathRequest
	if !h.bindJSON(c, &req) {
		return
	}

	path, err := h.service.CreatePath(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Path created", "path_id", path.ID)
	c.JSON(http.StatusCreated, path)
}

func (h *LearningHandler) UpdatePath(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.PathRequest
	if !h.bindJSON(c, &req) {
		return
	}

	path, err := h.service.UpdatePath(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (h *LearningHandler) DeletePath(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeletePath(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Path deleted successfully"})
}

// ===== MODULES =====

// ListModules lists the modules of the path given by the id param or the pathId query.
func (h *LearningHandler) ListModules(c *gin.Context) {
	var pathID uint
	if c.Param("id") != "" {
		if pathID = h.parseIDParam(c, "id"); pathID == 0 {
			return
		}
	} else {
		id, err := strconv.ParseUint(c.Query("pathId"), 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "pathId query parameter is required"})
			return
		}
		pathID = uint(id)
	}

	modules, err := h.service.ListModules(c.Request.Context(), pathID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

func (h *LearningHandler) GetModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	module, err := h.service.GetModule(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func (h *LearningHandler) CreateModule(c *gin.Context) {
	var req services.ModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	module, err := h.service.CreateModule(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Module created", "module_id", module.ID, "path_id", module.PathID)
	c.JSON(http.StatusCreated, module)
}

func (h *LearningHandler) UpdateModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	module, err := h.service.UpdateModule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func (h *LearningHandler) DeleteModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteModule(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Module deleted successfully"})
}

// ===== LECTURES =====

func (h *LearningHandler) ListLectures(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.ContentListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	if c.Param("id") != "" {
		moduleID := h.parseIDParam(c, "id")
		if moduleID == 0 {
			return
		}
		req.ModuleID = &moduleID
	}

	resp, err := h.service.ListLectures(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LearningHandler) GetLecture(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lecture, err := h.service.GetLecture(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lecture)
}

// CreateLecture accepts JSON, or a multipart form with up to three "materials" files.
func (h *LearningHandler) CreateLecture(c *gin.Context) {
	var req services.LectureRequest
	if !h.bindBody(c, &req) {
		return
	}

	materials, ok := h.uploader.Multiple(c, lectureMaterialsField)
	if !ok {
		return
	}
	req.Materials = materials

	lecture, err := h.service.CreateLecture(c.Request.Context(), &req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), materials...)
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Lecture created", "lecture_id", lecture.ID, "materials", len(materials))
	c.JSON(http.StatusCreated, lecture)
}

// UpdateLecture appends any uploaded materials to the existing ones.
func (h *LearningHandler) UpdateLecture(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.LectureRequest
	if !h.bindBody(c, &req) {
		return
	}

	materials, ok := h.uploader.Multiple(c, lectureMaterialsField)
	if !ok {
		return
	}
	req.Materials = materials

	lecture, err := h.service.UpdateLecture(c.Request.Context(), id, &req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), materials...)
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lecture)
}

func (h *LearningHandler) DeleteLecture(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteLecture(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Lecture deleted successfully"})
}
