package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register creates a pending account.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := handlerCtx(c, "auth.Register")
	req := middleware.Payload[dto.RegisterRequest](c)

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.InfoWithContext(ctx, "User registered").
		String("user_id", user.ID).
		Log()
	c.JSON(http.StatusCreated, user)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := handlerCtx(c, "auth.Login")
	req := middleware.Payload[dto.LoginRequest](c)

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		h.log.WarnWithContext(ctx, "Login failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := handlerCtx(c, "auth.Refresh")
	req := middleware.Payload[dto.RefreshTokenRequest](c)

	resp, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := handlerCtx(c, "auth.Logout")
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, h.log, apperrors.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(ctx, claims); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logged out"))
}

func (h *AuthHandler) Me(c *gin.Context) {
	ctx := handlerCtx(c, "auth.Me")
	a, ok := actor(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(ctx, a.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
