package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStatus string

const (
	PostDraft     PostStatus = "DRAFT"
	PostPublished PostStatus = "PUBLISHED"
	PostArchived  PostStatus = "ARCHIVED"
)

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Content     string             `bson:"content"`
	ContentHTML string             `bson:"contentHtml"`
	Excerpt     string             `bson:"excerpt"`
	Tags        []string           `bson:"tags"`
	AuthorID    primitive.ObjectID `bson:"authorId"`
	Status      PostStatus         `bson:"status"`
	Featured    bool               `bson:"featured"`
	PublishedAt *time.Time         `bson:"publishedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type CommentStatus string

const (
	CommentVisible CommentStatus = "VISIBLE"
	CommentHidden  CommentStatus = "HIDDEN"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostID    primitive.ObjectID `bson:"postId"`
	AuthorID  primitive.ObjectID `bson:"authorId"`
	Content   string             `bson:"content"`
	Status    CommentStatus      `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
