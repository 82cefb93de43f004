package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) leadRoutes(version *gin.RouterGroup) {
	leads := version.Group("/leads")
	{
		leads.POST("", r.strict(), middleware.ValidateBody[dto.CreateLeadRequest](r.log), r.h.Lead.Create)

		admin := leads.Group("")
		admin.Use(r.admin()...)
		{
			admin.GET("", r.h.Lead.List)
			admin.GET("/:id", r.h.Lead.Get)
			admin.PATCH("/:id/status", middleware.ValidateBody[dto.UpdateLeadStatusRequest](r.log), r.h.Lead.UpdateStatus)
			admin.DELETE("/:id", r.h.Lead.Delete)
		}
	}
}
