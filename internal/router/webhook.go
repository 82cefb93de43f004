package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) webhookRoutes(version *gin.RouterGroup) {
	hooks := version.Group("/webhooks")
	hooks.Use(r.admin()...)
	{
		hooks.GET("", r.h.Webhook.List)
		hooks.GET("/:id", r.h.Webhook.Get)
		hooks.POST("", middleware.ValidateBody[dto.CreateWebhookRequest](r.log), r.h.Webhook.Create)
		hooks.PUT("/:id", middleware.ValidateBody[dto.UpdateWebhookRequest](r.log), r.h.Webhook.Update)
		hooks.DELETE("/:id", r.h.Webhook.Delete)
		hooks.POST("/:id/test", r.h.Webhook.Test)
	}
}
