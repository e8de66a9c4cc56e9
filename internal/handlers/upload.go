package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/storage"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

// uploadField describes one multipart field an endpoint accepts.
type uploadField struct {
	Name     string
	Folder   string
	Kinds    []storage.FileKind
	MaxFiles int
}

var (
	lectureMaterialsField = uploadField{
		Name:     "materials",
		Folder:   "lectures/materials",
		Kinds:    []storage.FileKind{storage.KindDocument, storage.KindArchive, storage.KindCode},
		MaxFiles: 3,
	}
	problemSetVideoField = uploadField{
		Name:   "video",
		Folder: "problem-sets/videos",
		Kinds:  []storage.FileKind{storage.KindVideo, storage.KindDocument},
	}
	submissionFileFields = []uploadField{
		{Name: "submission", Folder: "problem-sets/submissions", Kinds: submissionKinds},
		{Name: "file", Folder: "problem-sets/submissions", Kinds: submissionKinds},
	}
	eventImageField = uploadField{
		Name:   "image",
		Folder: "events/images",
		Kinds:  []storage.FileKind{storage.KindImage},
	}

	submissionKinds = []storage.FileKind{storage.KindImage, storage.KindDocument, storage.KindArchive, storage.KindCode}
)

// Uploader moves multipart files into the file store before a handler calls its service.
type Uploader struct {
	BaseHandler
	store   storage.FileStore
	metrics *metrics.Metrics
}

func NewUploader(store storage.FileStore, m *metrics.Metrics, logger utils.Logger) *Uploader {
	return &Uploader{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		metrics:     m,
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// Single stores the file in field, if any. ok is false when a response was already written.
func (u *Uploader) Single(c *gin.Context, field uploadField) (file *storage.UploadedFile, ok bool) {
	if !isMultipart(c) {
		return nil, true
	}

	header, err := c.FormFile(field.Name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid multipart payload", Details: err.Error()})
		return nil, false
	}

	return u.put(c, field, header)
}

// Multiple stores up to field.MaxFiles files. Files stored before a failure are removed again.
func (u *Uploader) Multiple(c *gin.Context, field uploadField) ([]*storage.UploadedFile, bool) {
	if !isMultipart(c) {
		return nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid multipart payload", Details: err.Error()})
		return nil, false
	}

	headers := form.File[field.Name]
	if field.MaxFiles > 0 && len(headers) > field.MaxFiles {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Too many files in %s, at most %d allowed", field.Name, field.MaxFiles),
		})
		return nil, false
	}

	files := make([]*storage.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, ok := u.put(c, field, header)
		if !ok {
			u.Discard(c.Request.Context(), files...)
			return nil, false
		}
		files = append(files, file)
	}
	return files, true
}

// FirstOf stores the first present field among fields.
func (u *Uploader) FirstOf(c *gin.Context, fields ...uploadField) (*storage.UploadedFile, bool) {
	for _, field := range fields {
		file, ok := u.Single(c, field)
		if !ok || file != nil {
			return file, ok
		}
	}
	return nil, true
}

// Discard removes stored files whose request failed afterwards.
func (u *Uploader) Discard(ctx context.Context, files ...*storage.UploadedFile) {
	for _, file := range files {
		if file == nil {
			continue
		}
		if err := u.store.Delete(ctx, file.PublicID); err != nil {
			u.logger.Warn("Failed to discard uploaded file", "public_id", file.PublicID, "error", err)
		}
	}
}

// DiscardURL deletes a stored object by the URL it was served under. URLs the store
// did not hand out, such as submission links, are left alone.
func (u *Uploader) DiscardURL(ctx context.Context, url string) {
	if u.store == nil || url == "" {
		return
	}
	publicID, ok := u.store.PublicIDFor(url)
	if !ok {
		return
	}
	if err := u.store.Delete(ctx, publicID); err != nil {
		u.logger.Warn("Failed to discard replaced file", "public_id", publicID, "error", err)
	}
}

func (u *Uploader) put(c *gin.Context, field uploadField, header *multipart.FileHeader) (*storage.UploadedFile, bool) {
	if u.store == nil {
		u.metrics.ObserveUpload(field.Name, "unavailable")
		u.handleServiceError(c, services.ErrUploadFailed)
		return nil, false
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Unable to read uploaded file", Details: err.Error()})
		return nil, false
	}
	defer src.Close()

	file, err := u.store.Upload(c.Request.Context(), field.Folder, header.Filename, src, field.Kinds...)
	switch {
	case err == nil:
		u.metrics.ObserveUpload(string(file.Kind), "ok")
		return file, true
	case errors.Is(err, storage.ErrFileTypeRejected),
		errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrEmptyFile):
		u.metrics.ObserveUpload(field.Name, "rejected")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return nil, false
	default:
		u.metrics.ObserveUpload(field.Name, "error")
		u.LogError(c, err, "File upload failed", "field", field.Name)
		u.handleServiceError(c, services.ErrUploadFailed)
		return nil, false
	}
}
