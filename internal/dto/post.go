package dto

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required,min=3,max=200"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags" binding:"omitempty,max=10,unique,dive,min=1,max=30"`
	Featured bool     `json:"featured"`
	Publish  bool     `json:"publish"`
}

type UpdatePostRequest struct {
	Title    *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Content  *string  `json:"content" binding:"omitempty,min=1"`
	Tags     []string `json:"tags" binding:"omitempty,max=10,unique,dive,min=1,max=30"`
	Featured *bool    `json:"featured"`
}

type PostResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Content     string           `json:"content"`
	ContentHTML string           `json:"contentHtml"`
	Excerpt     string           `json:"excerpt"`
	Tags        []string         `json:"tags"`
	AuthorID    string           `json:"authorId"`
	Status      model.PostStatus `json:"status"`
	Featured    bool             `json:"featured"`
	PublishedAt *time.Time       `json:"publishedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func NewPostResponse(p *model.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:          p.ID.Hex(),
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		ContentHTML: p.ContentHTML,
		Excerpt:     p.Excerpt,
		Tags:        tags,
		AuthorID:    p.AuthorID.Hex(),
		Status:      p.Status,
		Featured:    p.Featured,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

type CommentResponse struct {
	ID        string              `json:"id"`
	PostID    string              `json:"postId"`
	AuthorID  string              `json:"authorId"`
	Content   string              `json:"content"`
	Status    model.CommentStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func NewCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID.Hex(),
		PostID:    c.PostID.Hex(),
		AuthorID:  c.AuthorID.Hex(),
		Content:   c.Content,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
