package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) eventRoutes(version *gin.RouterGroup) {
	events := version.Group("/events")
	{
		events.GET("", r.h.Event.List)
		events.GET("/:id", r.h.Event.Get)

		attendees := events.Group("")
		attendees.Use(r.jwtMw.RequireAuth())
		{
			attendees.POST("/:id/register", r.h.Event.Register)
			attendees.DELETE("/:id/register", r.h.Event.Unregister)
		}

		admin := events.Group("")
		admin.Use(r.admin()...)
		{
			admin.POST("", middleware.ValidateBody[dto.CreateEventRequest](r.log), r.h.Event.Create)
			admin.PUT("/:id", middleware.ValidateBody[dto.UpdateEventRequest](r.log), r.h.Event.Update)
			admin.POST("/:id/cancel", r.h.Event.Cancel)
			admin.DELETE("/:id", r.h.Event.Delete)
		}
	}
}
