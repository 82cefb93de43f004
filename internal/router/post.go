package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/gin-gonic/gin"
)

func (r *Router) postRoutes(version *gin.RouterGroup) {
	posts := version.Group("/posts")
	{
		posts.GET("", r.h.Post.ListPublished)
		posts.GET("/:id", r.jwtMw.OptionalAuth(), r.h.Post.Get)
		posts.GET("/:id/comments", r.h.Post.ListComments)

		authed := posts.Group("")
		authed.Use(r.jwtMw.RequireAuth())
		{
			authed.POST("", middleware.ValidateBody[dto.CreatePostRequest](r.log), r.h.Post.Create)
			authed.PUT("/:id", middleware.ValidateBody[dto.UpdatePostRequest](r.log), r.h.Post.Update)
			authed.POST("/:id/publish", r.h.Post.Publish)
			authed.POST("/:id/archive", r.h.Post.Archive)
			authed.DELETE("/:id", r.h.Post.Delete)
			authed.POST("/:id/comments", middleware.ValidateBody[dto.CreateCommentRequest](r.log), r.h.Post.AddComment)
		}

		posts.GET("/admin/all", append(r.admin(), r.h.Post.ListAll)...)
	}

	comments := version.Group("/comments")
	comments.Use(r.jwtMw.RequireAuth())
	{
		comments.PUT("/:commentId", middleware.ValidateBody[dto.UpdateCommentRequest](r.log), r.h.Post.UpdateComment)
		comments.DELETE("/:commentId", r.h.Post.DeleteComment)

		moderation := comments.Group("")
		moderation.Use(middleware.RequireRoles(model.RoleAdmin))
		{
			moderation.GET("", r.h.Post.ListAllComments)
			moderation.PATCH("/:commentId/hide", r.h.Post.SetCommentVisibility(false))
			moderation.PATCH("/:commentId/unhide", r.h.Post.SetCommentVisibility(true))
		}
	}
}
