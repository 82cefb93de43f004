package router

import (
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required)
		public := auth.Group("")
		public.Use(r.strict())
		{
			public.POST("/register", middleware.ValidateBody[dto.RegisterRequest](r.log), r.h.Auth.Register)
			public.POST("/login", middleware.ValidateBody[dto.LoginRequest](r.log), r.h.Auth.Login)
			public.POST("/refresh", middleware.ValidateBody[dto.RefreshTokenRequest](r.log), r.h.Auth.Refresh)
		}

		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.h.Auth.Logout)
			protected.GET("/me", r.h.Auth.Me)
		}
	}
}
