package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leads *service.LeadService
	log   *logger.Logger
}

func NewLeadHandler(leads *service.LeadService, log *logger.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, log: log}
}

// Create is the public contact form endpoint.
func (h *LeadHandler) Create(c *gin.Context) {
	ctx := handlerCtx(c, "leads.Create")

	lead, err := h.leads.Create(ctx, middleware.Payload[dto.CreateLeadRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leads.Get(handlerCtx(c, "leads.Get"), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) List(c *gin.Context) {
	page, err := h.leads.List(handlerCtx(c, "leads.List"), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	ctx := handlerCtx(c, "leads.UpdateStatus")
	req := middleware.Payload[dto.UpdateLeadStatusRequest](c)

	lead, err := h.leads.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.leads.Delete(handlerCtx(c, "leads.Delete"), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}
