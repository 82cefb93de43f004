package handler

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts    *service.PostService
	comments *service.CommentService
	log      *logger.Logger
}

func NewPostHandler(posts *service.PostService, comments *service.CommentService, log *logger.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, log: log}
}

func (h *PostHandler) Create(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Create")
	a, ok := actor(c)
	if !ok {
		return
	}

	post, err := h.posts.Create(ctx, a, middleware.Payload[dto.CreatePostRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Get accepts an id or a slug. Drafts are only visible to their author
// and admins.
func (h *PostHandler) Get(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Get")

	post, err := h.posts.Get(ctx, optionalActor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ListPublished(c *gin.Context) {
	ctx := handlerCtx(c, "posts.ListPublished")

	page, hit, err := h.posts.ListPublished(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCached(c, page, hit)
}

func (h *PostHandler) ListAll(c *gin.Context) {
	ctx := handlerCtx(c, "posts.ListAll")

	page, err := h.posts.ListAll(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) Update(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Update")
	a, ok := actor(c)
	if !ok {
		return
	}

	post, err := h.posts.Update(ctx, a, c.Param("id"), middleware.Payload[dto.UpdatePostRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Publish(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Publish")
	a, ok := actor(c)
	if !ok {
		return
	}

	post, err := h.posts.Publish(ctx, a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.InfoWithContext(ctx, "Post published").
		String("post_id", post.ID).
		Log()
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Archive(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Archive")
	a, ok := actor(c)
	if !ok {
		return
	}

	post, err := h.posts.Archive(ctx, a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	ctx := handlerCtx(c, "posts.Delete")
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(ctx, a, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	ctx := handlerCtx(c, "comments.Add")
	a, ok := actor(c)
	if !ok {
		return
	}

	comment, err := h.comments.Add(ctx, a, c.Param("id"), middleware.Payload[dto.CreateCommentRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) ListComments(c *gin.Context) {
	ctx := handlerCtx(c, "comments.ListForPost")

	page, err := h.comments.ListForPost(ctx, c.Param("id"), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) ListAllComments(c *gin.Context) {
	ctx := handlerCtx(c, "comments.ListAll")

	page, err := h.comments.ListAll(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
	ctx := handlerCtx(c, "comments.Update")
	a, ok := actor(c)
	if !ok {
		return
	}

	comment, err := h.comments.Update(ctx, a, c.Param("commentId"), middleware.Payload[dto.UpdateCommentRequest](c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// SetCommentVisibility returns a moderation handler that hides or shows
// a comment.
func (h *PostHandler) SetCommentVisibility(visible bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := handlerCtx(c, "comments.SetVisibility")

		comment, err := h.comments.SetVisibility(ctx, c.Param("commentId"), visible)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, comment)
	}
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	ctx := handlerCtx(c, "comments.Delete")
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(ctx, a, c.Param("commentId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondDeleted(c)
}
