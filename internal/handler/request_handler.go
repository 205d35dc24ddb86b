package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/navipay/port-requests/internal/dto"
	"github.com/navipay/port-requests/internal/middleware"
	"github.com/navipay/port-requests/internal/repository"
	"github.com/navipay/port-requests/internal/service"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RequestHandler) Get(c *gin.Context) {
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

	req, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) List(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	p := dto.ParsePagination(c)
	filter := repository.ListFilter{
		Type:         c.Query("type"),
		Status:       c.Query("status"),
		BillOfLading: c.Query("bill_of_lading"),
		Container:    c.Query("container"),
		Window:       c.DefaultQuery("window", "today"),
		Limit:        p.PageSize,
		Offset:       p.Offset,
	}
	if raw := c.Query("shipping_line_id"); raw != "" {
		lineID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "invalid shipping_line_id"})
			return
		}
		filter.ShippingLineID = &lineID
	}

	requests, total, err := h.svc.List(c.Request.Context(), actor, filter)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, dto.RequestListResponse{
		Data:       requests,
		Pagination: dto.NewPagination(p.Page, p.PageSize, total),
	})
}

func (h *RequestHandler) Update(c *gin.Context) {
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

	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RequestHandler) ChangeState(c *gin.Context) {
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

	var req dto.ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	updated, err := h.svc.ChangeState(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RequestHandler) Delete(c *gin.Context) {
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

	if err := h.svc.Remove(c.Request.Context(), actor, id); err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "request deleted"})
}

func (h *RequestHandler) Stats(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, stats)
}
