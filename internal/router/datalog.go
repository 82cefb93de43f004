package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) dataLogRoutes(version *gin.RouterGroup) {
	logs := version.Group("/data-logs")
	logs.Use(r.admin()...)
	{
		logs.GET("", r.h.DataLog.List)
		logs.GET("/:id", r.h.DataLog.Get)
		logs.POST("/purge", middleware.ValidateBody[dto.PurgeDataLogsRequest](r.log), r.h.DataLog.Purge)
	}
}
