package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type DataLogHandler struct {
	logs *service.DataLogService
	log  *logger.Logger
}

func NewDataLogHandler(logs *service.DataLogService, log *logger.Logger) *DataLogHandler {
	return &DataLogHandler{logs: logs, log: log}
}

func (h *DataLogHandler) List(c *gin.Context) {
	page, err := h.logs.List(handlerCtx(c, "datalogs.List"), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DataLogHandler) Get(c *gin.Context) {
	entry, err := h.logs.Get(handlerCtx(c, "datalogs.Get"), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DataLogHandler) Purge(c *gin.Context) {
	ctx := handlerCtx(c, "datalogs.Purge")
	req := middleware.Payload[dto.PurgeDataLogsRequest](c)

	resp, err := h.logs.Purge(ctx, req.OlderThanDays)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.InfoWithContext(ctx, "Data logs purged").
		Int("older_than_days", req.OlderThanDays).
		Int64("deleted", resp.Deleted).
		Log()
	c.JSON(http.StatusOK, resp)
}
