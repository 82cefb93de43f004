package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/content"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error)
	List(ctx context.Context, req *query.Request) ([]model.Comment, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// PostReader is the part of the post store comments depend on.
type PostReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
}

func CommentRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("commentDateRange").
		Search("searchComment", "content").
		In("commentByStatuses", "status").
		IDs("commentByIds", "_id", query.ObjectIDParser).
		IDs("commentByPostIds", "postId", query.ObjectIDParser).
		IDs("commentByAuthorIds", "authorId", query.ObjectIDParser)
}

type CommentService struct {
	comments  CommentStore
	posts     PostReader
	renderer  *content.Renderer
	listing   listing[model.Comment, dto.CommentResponse]
	publisher webhook.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewCommentService(comments CommentStore, posts PostReader, renderer *content.Renderer, deps Deps) *CommentService {
	deps = deps.normalized()
	if renderer == nil {
		renderer = content.NewRenderer()
	}
	return &CommentService{
		comments: comments,
		posts:    posts,
		renderer: renderer,
		listing: listing[model.Comment, dto.CommentResponse]{
			engine:   deps.Engine,
			registry: CommentRegistry(),
			store:    comments,
			mapFn:    dto.NewCommentResponse,
		},
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       deps.Now,
	}
}

func (s *CommentService) sanitize(raw string) (string, error) {
	text := strings.TrimSpace(s.renderer.PlainText(raw))
	if text == "" {
		return "", apperrors.Detail(apperrors.ErrInvalidInput, "comment is empty after sanitizing")
	}
	return text, nil
}

func (s *CommentService) publishedPost(ctx context.Context, rawPostID string) (*model.Post, error) {
	postID, err := parseID(rawPostID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	if post.Status != model.PostPublished {
		return nil, apperrors.ErrPostNotPublic
	}
	return post, nil
}

// Add comments on a published post.
func (s *CommentService) Add(ctx context.Context, actor Actor, rawPostID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	ctx = serviceCtx(ctx, "comments.add")

	post, err := s.publishedPost(ctx, rawPostID)
	if err != nil {
		return nil, err
	}
	text, err := s.sanitize(req.Content)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comment := &model.Comment{
		PostID:    post.ID,
		AuthorID:  actor.ID,
		Content:   text,
		Status:    model.CommentVisible,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create comment").
			String("post_id", post.ID.Hex()).
			Err(err).
			Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Comment added").
		String("comment_id", comment.ID.Hex()).
		String("post_id", post.ID.Hex()).
		Log()

	res := dto.NewCommentResponse(comment)
	s.publisher.Publish(ctx, model.TopicCommentCreated, res)
	return &res, nil
}

// ListForPost lists the visible comments of a published post.
func (s *CommentService) ListForPost(ctx context.Context, rawPostID string, q url.Values) (*query.Page[dto.CommentResponse], error) {
	ctx = serviceCtx(ctx, "comments.listForPost")

	post, err := s.publishedPost(ctx, rawPostID)
	if err != nil {
		return nil, err
	}
	return s.listing.run(ctx, q, query.Scope{
		Default: []query.Clause{
			query.Eq{Field: "postId", Value: post.ID},
			query.Eq{Field: "status", Value: string(model.CommentVisible)},
		},
	})
}

func (s *CommentService) ListAll(ctx context.Context, q url.Values) (*query.Page[dto.CommentResponse], error) {
	ctx = serviceCtx(ctx, "comments.listAll")
	return s.listing.run(ctx, q, query.Scope{})
}

func (s *CommentService) get(ctx context.Context, rawID string) (*model.Comment, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if comment == nil {
		return nil, apperrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *CommentService) set(ctx context.Context, id primitive.ObjectID, set bson.M) (*dto.CommentResponse, error) {
	comment, err := s.comments.Update(ctx, id, set)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if comment == nil {
		return nil, apperrors.ErrCommentNotFound
	}
	res := dto.NewCommentResponse(comment)
	return &res, nil
}

// Update edits a comment. Only its author may do so, admins included.
func (s *CommentService) Update(ctx context.Context, actor Actor, rawID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	ctx = serviceCtx(ctx, "comments.update")

	comment, err := s.get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	text, err := s.sanitize(req.Content)
	if err != nil {
		return nil, err
	}
	return s.set(ctx, comment.ID, bson.M{"content": text})
}

// SetVisibility hides or unhides a comment.
func (s *CommentService) SetVisibility(ctx context.Context, rawID string, visible bool) (*dto.CommentResponse, error) {
	ctx = serviceCtx(ctx, "comments.setVisibility")

	comment, err := s.get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	status := model.CommentHidden
	if visible {
		status = model.CommentVisible
	}
	if comment.Status == status {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "comment is already %s", status)
	}

	s.log.InfoWithContext(ctx, "Comment visibility changed").
		String("comment_id", comment.ID.Hex()).
		String("status", string(status)).
		Log()
	return s.set(ctx, comment.ID, bson.M{"status": status})
}

func (s *CommentService) Delete(ctx context.Context, actor Actor, rawID string) error {
	ctx = serviceCtx(ctx, "comments.delete")

	comment, err := s.get(ctx, rawID)
	if err != nil {
		return err
	}
	if !actor.Owns(comment.AuthorID) {
		return apperrors.ErrForbidden
	}
	deleted, err := s.comments.Delete(ctx, comment.ID)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrCommentNotFound
	}

	s.log.InfoWithContext(ctx, "Comment deleted").
		String("comment_id", comment.ID.Hex()).
		String("deleted_by", actor.ID.Hex()).
		Log()
	return nil
}
