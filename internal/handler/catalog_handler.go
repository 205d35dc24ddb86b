package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/navipay/port-requests/internal/dto"
	"github.com/navipay/port-requests/internal/middleware"
	"github.com/navipay/port-requests/internal/service"
)

// CatalogHandler serves the reference data behind billing: shipping lines,
// per-line tariffs and the exchange rate configuration.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ListShippingLines(c *gin.Context) {
	lines, err := h.svc.ListShippingLines(c.Request.Context())
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lines})
}

func (h *CatalogHandler) ListTariffs(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	tariffs, err := h.svc.ListTariffs(c.Request.Context(), actor)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tariffs})
}

func (h *CatalogHandler) CreateTariff(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	var req dto.CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	tariff, err := h.svc.CreateTariff(c.Request.Context(), actor, &req)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

func (h *CatalogHandler) UpdateTariff(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{Error: "invalid tariff id"})
		return
	}

	var req dto.UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	tariff, err := h.svc.UpdateTariff(c.Request.Context(), actor, id, &req)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func (h *CatalogHandler) GetRateConfig(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	cfg, err := h.svc.GetRateConfig(c.Request.Context(), actor)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *CatalogHandler) UpdateRateConfig(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorListResponse{Error: "authentication required"})
		return
	}

	var req dto.UpdateRateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}

	cfg, err := h.svc.UpdateRateConfig(c.Request.Context(), actor, &req)
	if err != nil {
		status, resp := middleware.MapError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
