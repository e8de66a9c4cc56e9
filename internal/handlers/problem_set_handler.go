package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

// ProblemSetHandler serves problem sets, submissions and grading.
type ProblemSetHandler struct {
	BaseHandler
	problemSets services.ProblemSetService
	submissions services.SubmissionService
	exports     services.ExportService
	uploader    *Uploader
}

func NewProblemSetHandler(
	problemSets services.ProblemSetService,
	submissions services.SubmissionService,
	exports services.ExportService,
	uploader *Uploader,
	logger utils.Logger,
) *ProblemSetHandler {
	return &ProblemSetHandler{
		BaseHandler: NewBaseHandler(logger),
		problemSets: problemSets,
		submissions: submissions,
		exports:     exports,
		uploader:    uploader,
	}
}

func (h *ProblemSetHandler) List(c *gin.Context) {
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

	resp, err := h.problemSets.List(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProblemSetHandler) Get(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	ps, err := h.problemSets.Get(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// Create accepts JSON, or a multipart form with an optional "video" explainer.
func (h *ProblemSetHandler) Create(c *gin.Context) {
	var req services.ProblemSetRequest
	if !h.bindBody(c, &req) {
		return
	}

	video, ok := h.uploader.Single(c, problemSetVideoField)
	if !ok {
		return
	}
	req.Video = video

	ps, err := h.problemSets.Create(c.Request.Context(), &req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), video)
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Problem set created", "problem_set_id", ps.ID, "type", ps.SubmissionType)
	c.JSON(http.StatusCreated, ps)
}

func (h *ProblemSetHandler) Update(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ProblemSetRequest
	if !h.bindBody(c, &req) {
		return
	}

	video, ok := h.uploader.Single(c, problemSetVideoField)
	if !ok {
		return
	}
	req.Video = video

	ps, err := h.problemSets.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.uploader.Discard(c.Request.Context(), video)
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *ProblemSetHandler) Delete(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.problemSets.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Problem set deleted successfully"})
}

// Submit takes a link as JSON, or a file in the "submission" or "file" multipart field.
func (h *ProblemSetHandler) Submit(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitRequest
	if c.Request.ContentLength != 0 && !h.bindBody(c, &req) {
		return
	}

	file, ok := h.uploader.FirstOf(c, submissionFileFields...)
	if !ok {
		return
	}
	req.File = file

	ctx := c.Request.Context()
	result, err := h.submissions.Submit(ctx, id, user, &req)
	if err != nil {
		h.uploader.Discard(ctx, file)
		h.handleServiceError(c, err)
		return
	}
	// Link problem sets ignore an attached file.
	if file != nil && result.Submission.SubmissionURL != file.URL {
		h.uploader.Discard(ctx, file)
	}
	h.uploader.DiscardURL(ctx, result.ReplacedURL)

	h.LogRequest(c, "Problem set submitted", "problem_set_id", id, "user_id", user.ID, "first", result.FirstSubmit)
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submission received",
		Data:    result,
	})
}

func (h *ProblemSetHandler) MySubmission(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.problemSets.MySubmission(c.Request.Context(), id, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *ProblemSetHandler) Grade(c *gin.Context) {
	grader := h.requireUser(c)
	if grader == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.problemSets.Grade(c.Request.Context(), id, c.Param("userId"), &req, grader)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Submission graded", "problem_set_id", id, "user_id", c.Param("userId"), "passed", result.Passed)
	c.JSON(http.StatusOK, result)
}

func (h *ProblemSetHandler) ListSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmissionListRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.problemSets.ListSubmissions(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProblemSetHandler) ExportSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, err := h.exports.ExportSubmissions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendSpreadsheet(c, file)
}

func sendSpreadsheet(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, services.SpreadsheetContentType, file.Data)
}
