package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/internal/repository"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/content"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const postsNamespace = "posts"

type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	List(ctx context.Context, req *query.Request) ([]model.Post, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CommentPurger removes the comments of a deleted post.
type CommentPurger interface {
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

func PostRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("postDateRange").
		Search("searchPost", "title", "content", "tags").
		In("postByStatuses", "status").
		IDs("postByIds", "_id", query.ObjectIDParser).
		IDs("postByAuthorIds", "authorId", query.ObjectIDParser).
		In("postByTags", "tags").
		Flag("featured", "featured")
}

type PostService struct {
	posts     PostStore
	comments  CommentPurger
	renderer  *content.Renderer
	listing   cachedListing[model.Post, dto.PostResponse]
	publisher webhook.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewPostService(posts PostStore, comments CommentPurger, renderer *content.Renderer, lists *cache.ListCache, m *metrics.Metrics, deps Deps) *PostService {
	deps = deps.normalized()
	if renderer == nil {
		renderer = content.NewRenderer()
	}
	return &PostService{
		posts:    posts,
		comments: comments,
		renderer: renderer,
		listing: cachedListing[model.Post, dto.PostResponse]{
			listing: listing[model.Post, dto.PostResponse]{
				engine:   deps.Engine,
				registry: PostRegistry(),
				store:    posts,
				mapFn:    dto.NewPostResponse,
			},
			namespace: postsNamespace,
			cache:     lists,
			metrics:   m,
		},
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       deps.Now,
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *PostService) render(markdown string) (string, string, error) {
	html, err := s.renderer.HTML(markdown)
	if err != nil {
		return "", "", apperrors.Detail(apperrors.ErrInvalidInput, "content could not be rendered: %v", err)
	}
	return html, s.renderer.Excerpt(html, constants.MaxExcerptLength), nil
}

func (s *PostService) Create(ctx context.Context, actor Actor, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	ctx = serviceCtx(ctx, "posts.create")

	slug := content.Slugify(req.Title)
	if slug == "" {
		return nil, apperrors.Detail(apperrors.ErrInvalidInput, "title must contain letters or digits")
	}
	html, excerpt, err := s.render(req.Content)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &model.Post{
		ID:          primitive.NewObjectIDFromTimestamp(now),
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Content:     req.Content,
		ContentHTML: html,
		Excerpt:     excerpt,
		Tags:        cleanTags(req.Tags),
		AuthorID:    actor.ID,
		Status:      model.PostDraft,
		Featured:    req.Featured && actor.IsAdmin(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Publish {
		post.Status = model.PostPublished
		post.PublishedAt = &now
	}

	err = s.posts.Create(ctx, post)
	if errors.Is(err, repository.ErrDuplicate) {
		// same title as an existing post: disambiguate with the id tail
		hex := post.ID.Hex()
		post.Slug = slug + "-" + hex[len(hex)-6:]
		err = s.posts.Create(ctx, post)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.ErrSlugExists
	}
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create post").Err(err).Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Post created").
		String("post_id", post.ID.Hex()).
		String("slug", post.Slug).
		String("status", string(post.Status)).
		Log()

	s.listing.invalidate(ctx)
	res := dto.NewPostResponse(post)
	if post.Status == model.PostPublished {
		s.publisher.Publish(ctx, model.TopicPostPublished, res)
	}
	return &res, nil
}

// lookup resolves an id or a slug.
func (s *PostService) lookup(ctx context.Context, idOrSlug string) (*model.Post, error) {
	var post *model.Post
	var err error
	if id, perr := primitive.ObjectIDFromHex(idOrSlug); perr == nil {
		post, err = s.posts.GetByID(ctx, id)
	} else {
		post, err = s.posts.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, wrapInternal(err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

// Get returns a post by id or slug. Unpublished posts are visible to their
// author and to admins only; actor is nil for anonymous callers.
func (s *PostService) Get(ctx context.Context, actor *Actor, idOrSlug string) (*dto.PostResponse, error) {
	ctx = serviceCtx(ctx, "posts.get")

	post, err := s.lookup(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostPublished && (actor == nil || !actor.Owns(post.AuthorID)) {
		return nil, apperrors.ErrPostNotFound
	}
	res := dto.NewPostResponse(post)
	return &res, nil
}

// ListPublished lists published posts only. Results are cached.
func (s *PostService) ListPublished(ctx context.Context, q url.Values) (*query.Page[dto.PostResponse], bool, error) {
	ctx = serviceCtx(ctx, "posts.listPublished")
	return s.listing.run(ctx, q, query.Scope{
		Default: []query.Clause{query.Eq{Field: "status", Value: string(model.PostPublished)}},
	})
}

// ListAll lists posts in every status, for admins.
func (s *PostService) ListAll(ctx context.Context, q url.Values) (*query.Page[dto.PostResponse], error) {
	ctx = serviceCtx(ctx, "posts.listAll")
	return s.listing.listing.run(ctx, q, query.Scope{})
}

func (s *PostService) owned(ctx context.Context, actor Actor, rawID string) (*model.Post, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	if !actor.Owns(post.AuthorID) {
		return nil, apperrors.ErrForbidden
	}
	return post, nil
}

func (s *PostService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Post, error) {
	post, err := s.posts.Update(ctx, id, set)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.ErrSlugExists
	}
	if err != nil {
		return nil, wrapInternal(err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	s.listing.invalidate(ctx)
	return post, nil
}

// Update edits a post. The slug is kept so published links stay valid.
func (s *PostService) Update(ctx context.Context, actor Actor, rawID string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	ctx = serviceCtx(ctx, "posts.update")

	post, err := s.owned(ctx, actor, rawID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		html, excerpt, err := s.render(*req.Content)
		if err != nil {
			return nil, err
		}
		set["content"] = *req.Content
		set["contentHtml"] = html
		set["excerpt"] = excerpt
	}
	if req.Tags != nil {
		set["tags"] = cleanTags(req.Tags)
	}
	if req.Featured != nil {
		if !actor.IsAdmin() {
			return nil, apperrors.Detail(apperrors.ErrForbidden, "only admins can feature posts")
		}
		set["featured"] = *req.Featured
	}
	if len(set) == 0 {
		res := dto.NewPostResponse(post)
		return &res, nil
	}

	updated, err := s.apply(ctx, post.ID, set)
	if err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "Post updated").
		String("post_id", post.ID.Hex()).
		Int("fields", len(set)).
		Log()

	res := dto.NewPostResponse(updated)
	return &res, nil
}

func (s *PostService) Publish(ctx context.Context, actor Actor, rawID string) (*dto.PostResponse, error) {
	ctx = serviceCtx(ctx, "posts.publish")

	post, err := s.owned(ctx, actor, rawID)
	if err != nil {
		return nil, err
	}
	if post.Status == model.PostPublished {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "post is already published")
	}

	set := bson.M{"status": model.PostPublished}
	if post.PublishedAt == nil {
		set["publishedAt"] = s.now().UTC()
	}
	updated, err := s.apply(ctx, post.ID, set)
	if err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "Post published").
		String("post_id", post.ID.Hex()).
		Log()

	res := dto.NewPostResponse(updated)
	s.publisher.Publish(ctx, model.TopicPostPublished, res)
	return &res, nil
}

func (s *PostService) Archive(ctx context.Context, actor Actor, rawID string) (*dto.PostResponse, error) {
	ctx = serviceCtx(ctx, "posts.archive")

	post, err := s.owned(ctx, actor, rawID)
	if err != nil {
		return nil, err
	}
	if post.Status == model.PostArchived {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "post is already archived")
	}

	updated, err := s.apply(ctx, post.ID, bson.M{"status": model.PostArchived})
	if err != nil {
		return nil, err
	}
	res := dto.NewPostResponse(updated)
	return &res, nil
}

// Delete removes the post and its comments.
func (s *PostService) Delete(ctx context.Context, actor Actor, rawID string) error {
	ctx = serviceCtx(ctx, "posts.delete")

	post, err := s.owned(ctx, actor, rawID)
	if err != nil {
		return err
	}
	deleted, err := s.posts.Delete(ctx, post.ID)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrPostNotFound
	}
	s.listing.invalidate(ctx)

	removed, err := s.comments.DeleteByPost(ctx, post.ID)
	if err != nil {
		s.log.WarnWithContext(ctx, "Failed to delete comments of post").
			String("post_id", post.ID.Hex()).
			Err(err).
			Log()
	}

	s.log.InfoWithContext(ctx, "Post deleted").
		String("post_id", post.ID.Hex()).
		Int64("comments_removed", removed).
		Log()
	return nil
}
