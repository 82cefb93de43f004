package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/validation"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	hooks *service.WebhookService
	log   *logger.Logger
}

func NewWebhookHandler(hooks *service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{hooks: hooks, log: log}
}

// Create registers a webhook. The signing secret is only returned here.
func (h *WebhookHandler) Create(c *gin.Context) {
	ctx := handlerCtx(c, "webhooks.Create")

	hook, err := h.hooks.Create(ctx, middleware.Payload[dto.CreateWebhookRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, hook)
}

func (h *WebhookHandler) Get(c *gin.Context) {
	hook, err := h.hooks.Get(handlerCtx(c, "webhooks.Get"), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

func (h *WebhookHandler) List(c *gin.Context) {
	page, err := h.hooks.List(handlerCtx(c, "webhooks.List"), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *WebhookHandler) Update(c *gin.Context) {
	ctx := handlerCtx(c, "webhooks.Update")

	hook, err := h.hooks.Update(ctx, c.Param("id"), middleware.Payload[dto.UpdateWebhookRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	if err := h.hooks.Delete(handlerCtx(c, "webhooks.Delete"), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}

// Test sends a sample delivery synchronously and reports its outcome.
func (h *WebhookHandler) Test(c *gin.Context) {
	ctx := handlerCtx(c, "webhooks.Test")

	// the body is optional, an empty one selects the default topic
	req := &dto.TestWebhookRequest{}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.log, apperrors.Detail(apperrors.ErrInvalidInput, "%s", strings.Join(validation.Messages(err), "; ")))
		return
	}

	result, err := h.hooks.Test(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
