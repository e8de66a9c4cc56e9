package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	service services.CertificateService
}

func NewCertificateHandler(service services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *CertificateHandler) List(c *gin.Context) {
	var req services.CertificateListRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMine lists the certificates held by the caller.
func (h *CertificateHandler) ListMine(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var page services.PageRequest
	if !h.bindQuery(c, &page) {
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), user.ID, page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CertificateHandler) Get(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	cert, err := h.service.Get(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// Verify is public. It answers whether a certificate id was issued.
func (h *CertificateHandler) Verify(c *gin.Context) {
	cert, err := h.service.Verify(c.Request.Context(), c.Param("certificateId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"certificate": cert,
	})
}

func (h *CertificateHandler) Create(c *gin.Context) {
	issuer := h.requireUser(c)
	if issuer == nil {
		return
	}

	var req services.CertificateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cert, err := h.service.Create(c.Request.Context(), &req, issuer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Certificate issued", "certificate_id", cert.CertificateID, "user_id", cert.UserID)
	c.JSON(http.StatusCreated, cert)
}

func (h *CertificateHandler) Update(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCertificateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cert, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificateHandler) Delete(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Certificate deleted successfully"})
}
