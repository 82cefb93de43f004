package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	events *service.EventService
	log    *logger.Logger
}

func NewEventHandler(events *service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{events: events, log: log}
}

func (h *EventHandler) Create(c *gin.Context) {
	ctx := handlerCtx(c, "events.Create")
	a, ok := actor(c)
	if !ok {
		return
	}

	event, err := h.events.Create(ctx, a, middleware.Payload[dto.CreateEventRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(handlerCtx(c, "events.Get"), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) List(c *gin.Context) {
	page, hit, err := h.events.List(handlerCtx(c, "events.List"), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCached(c, page, hit)
}

func (h *EventHandler) Update(c *gin.Context) {
	ctx := handlerCtx(c, "events.Update")

	event, err := h.events.Update(ctx, c.Param("id"), middleware.Payload[dto.UpdateEventRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	ctx := handlerCtx(c, "events.Cancel")

	event, err := h.events.Cancel(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.InfoWithContext(ctx, "Event cancelled").
		String("event_id", event.ID).
		Log()
	c.JSON(http.StatusOK, event)
}

// Register adds the caller to the attendee list.
func (h *EventHandler) Register(c *gin.Context) {
	ctx := handlerCtx(c, "events.Register")
	a, ok := actor(c)
	if !ok {
		return
	}

	event, err := h.events.Register(ctx, a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Unregister(c *gin.Context) {
	ctx := handlerCtx(c, "events.Unregister")
	a, ok := actor(c)
	if !ok {
		return
	}

	event, err := h.events.Unregister(ctx, a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(handlerCtx(c, "events.Delete"), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}
