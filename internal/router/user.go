package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	users.Use(r.jwtMw.RequireAuth())
	{
		// self service
		users.PUT("/me/password", middleware.ValidateBody[dto.UpdatePasswordRequest](r.log), r.h.User.UpdatePassword)
		users.PUT("/:id", middleware.ValidateBody[dto.UpdateUserRequest](r.log), r.h.User.Update)

		admin := users.Group("")
		admin.Use(middleware.RequireRoles(model.RoleAdmin))
		{
			admin.GET("", r.h.User.List)
			admin.GET("/summary", r.h.User.Summary)
			admin.GET("/:id", r.h.User.GetByID)
			admin.POST("", middleware.ValidateBody[dto.CreateUserRequest](r.log), r.h.User.Create)
			admin.PATCH("/:id/activate", r.h.User.ChangeStatus(model.UserActive))
			admin.PATCH("/:id/disable", r.h.User.ChangeStatus(model.UserDisabled))
			admin.PATCH("/:id/deactivate", r.h.User.ChangeStatus(model.UserDeactivated))
			admin.DELETE("/:id", r.h.User.Delete)
		}
	}
}
