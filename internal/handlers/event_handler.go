package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/storage"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

// EventHandler serves one event kind. Community and professional events get one instance each.
type EventHandler struct {
	BaseHandler
	kind     models.EventKind
	events   services.EventService
	exports  services.ExportService
	uploader *Uploader
}

func NewEventHandler(
	kind models.EventKind,
	events services.EventService,
	exports services.ExportService,
	uploader *Uploader,
	logger utils.Logger,
) *EventHandler {
	return &EventHandler{
		BaseHandler: NewBaseHandler(logger.With("event_kind", string(kind))),
		kind:        kind,
		events:      events,
		exports:     exports,
		uploader:    uploader,
	}
}

func (h *EventHandler) List(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var req services.EventListRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.events.List(c.Request.Context(), h.kind, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) Get(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	event, err := h.events.Get(c.Request.Context(), h.kind, id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	req, image, ok := h.bindEvent(c)
	if !ok {
		return
	}

	event, err := h.events.Create(c.Request.Context(), h.kind, req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), image)
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Event created", "event_id", event.ID)
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	req, image, ok := h.bindEvent(c)
	if !ok {
		return
	}

	event, err := h.events.Update(c.Request.Context(), h.kind, id, req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), image)
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.events.Delete(c.Request.Context(), h.kind, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) RSVP(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attendee, err := h.events.RSVP(c.Request.Context(), h.kind, id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "RSVP successful", Data: attendee})
}

func (h *EventHandler) CancelRSVP(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.events.CancelRSVP(c.Request.Context(), h.kind, id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "RSVP cancelled successfully"})
}

func (h *EventHandler) MarkAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.events.MarkAttendance(c.Request.Context(), h.kind, id, c.Param("userId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attendance marked successfully"})
}

func (h *EventHandler) ListAttendees(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attendees, err := h.events.ListAttendees(c.Request.Context(), h.kind, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

func (h *EventHandler) ExportAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, err := h.exports.ExportAttendance(c.Request.Context(), h.kind, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendSpreadsheet(c, file)
}

// bindEvent reads a JSON body, or a multipart form whose "data" field holds the JSON
// next to an optional "image" cover.
func (h *EventHandler) bindEvent(c *gin.Context) (*services.EventRequest, *storage.UploadedFile, bool) {
	var req services.EventRequest
	if !isMultipart(c) {
		if !h.bindJSON(c, &req) {
			return nil, nil, false
		}
		return &req, nil, true
	}

	if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, nil, false
	}

	image, ok := h.uploader.Single(c, eventImageField)
	if !ok {
		return nil, nil, false
	}
	req.Image = image
	return &req, image, true
}
