package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
	log         *logger.Logger
}

func NewUserHandler(userService *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) Create(c *gin.Context) {
	ctx := handlerCtx(c, "users.Create")
	req := middleware.Payload[dto.CreateUserRequest](c)

	user, err := h.userService.Create(ctx, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := handlerCtx(c, "users.GetByID")

	user, err := h.userService.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	ctx := handlerCtx(c, "users.List")

	page, err := h.userService.List(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.DebugWithContext(ctx, "Users listed").
		Int64("total_records", page.TotalRecords).
		Int("returned", len(page.Results)).
		Log()
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Summary(c *gin.Context) {
	ctx := handlerCtx(c, "users.Summary")

	summary, err := h.userService.Summary(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Update edits a profile. Users may edit their own, admins any.
func (h *UserHandler) Update(c *gin.Context) {
	ctx := handlerCtx(c, "users.Update")
	a, ok := actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !a.IsAdmin() && a.ID.Hex() != id {
		respondError(c, h.log, apperrors.ErrForbidden)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, id, middleware.Payload[dto.UpdateUserRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangeStatus returns a handler moving users to status.
func (h *UserHandler) ChangeStatus(status model.UserStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := handlerCtx(c, "users.ChangeStatus")
		a, ok := actor(c)
		if !ok {
			return
		}

		user, err := h.userService.ChangeStatus(ctx, a, c.Param("id"), status)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	ctx := handlerCtx(c, "users.UpdatePassword")
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.userService.UpdatePassword(ctx, a.ID, middleware.Payload[dto.UpdatePasswordRequest](c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please sign in again"})
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx := handlerCtx(c, "users.Delete")
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(ctx, a, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}
