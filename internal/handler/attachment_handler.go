package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/navipay/port-requests/internal/dto"
	"github.com/navipay/port-requests/internal/middleware"
	"github.com/navipay/port-requests/internal/model"
	"github.com/navipay/port-requests/internal/service"
	"github.com/navipay/port-requests/internal/storage"
)

type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

func parseKind(raw string) (model.AttachmentKind, bool) {
	switch model.AttachmentKind(raw) {
	case model.AttachmentProof, model.AttachmentInvoice, model.AttachmentSupplement:
		return model.AttachmentKind(raw), true
	}
	return "", false
}

// Upload receives a multipart form with a single "file" field. The kind in
// the path decides which workflow gate applies.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "invalid request id"})
		return
	}

	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "unknown document kind"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "missing file field"})
		return
	}
	if fileHeader.Size > storage.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorListResponse{
			Error: "file exceeds the " + strconv.Itoa(storage.MaxFileSize/(1024*1024)) + " MiB limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "unreadable file"})
		return
	}
	defer file.Close()

	var (
		ref   string
		state model.RequestStatus
	)
	switch kind {
	case model.AttachmentProof:
		ref, state, err = h.svc.UploadProof(c.Request.Context(), actor, id, file, fileHeader.Size)
	case model.AttachmentInvoice:
		ref, state, err = h.svc.UploadInvoice(c.Request.Context(), actor, id, file, fileHeader.Size)
	case model.AttachmentSupplement:
		ref, state, err = h.svc.UploadSupplement(c.Request.Context(), actor, id, file, fileHeader.Size)
	}
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, dto.AttachmentResponse{Kind: kind, Reference: ref, Status: state})
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "invalid request id"})
		return
	}

	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "unknown document kind"})
		return
	}

	obj, err := h.svc.Download(c.Request.Context(), actor, id, kind)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	defer obj.Reader.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Reader, nil)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "invalid request id"})
		return
	}

	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "unknown document kind"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id, kind); err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "document removed"})
}
