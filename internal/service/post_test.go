package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postFixture struct {
	svc      *PostService
	posts    *fakePosts
	comments *fakeComments
	pub      *recordingPublisher
	author   Actor
	admin    Actor
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)

	f := &postFixture{
		posts:    newFakePosts(),
		comments: newFakeComments(),
		pub:      &recordingPublisher{},
		author:   Actor{ID: primitive.NewObjectID(), Role: model.RoleUser},
		admin:    Actor{ID: primitive.NewObjectID(), Role: model.RoleAdmin},
	}
	lists := cache.NewListCache(mem, time.Minute, logger.NewNop())
	f.svc = NewPostService(f.posts, f.comments, nil, lists, nil, Deps{Publisher: f.pub, Now: fixedClock(testNow)})
	return f
}

func (f *postFixture) create(t *testing.T, title string, publish bool) *dto.PostResponse {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.author, &dto.CreatePostRequest{
		Title:   title,
		Content: "# Heading\n\nSome *markdown* body.",
		Tags:    []string{"Go", " go ", "Backend"},
		Publish: publish,
	})
	require.NoError(t, err)
	return p
}

func TestPostService_Create(t *testing.T) {
	f := newPostFixture(t)

	draft := f.create(t, "Hello World", false)
	assert.Equal(t, "hello-world", draft.Slug)
	assert.Equal(t, model.PostDraft, draft.Status)
	assert.Nil(t, draft.PublishedAt)
	assert.Equal(t, []string{"go", "backend"}, draft.Tags)
	assert.Contains(t, draft.ContentHTML, "<h1")
	assert.NotContains(t, draft.Excerpt, "<")
	assert.Empty(t, f.pub.Topics())

	published := f.create(t, "Hello World", true)
	assert.True(t, strings.HasPrefix(published.Slug, "hello-world-"))
	assert.Len(t, published.Slug, len("hello-world-")+6)
	assert.Equal(t, model.PostPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, testNow, *published.PublishedAt)
	assert.Equal(t, []string{model.TopicPostPublished}, f.pub.Topics())
}

func TestPostService_CreateRejectsEmptySlug(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), f.author, &dto.CreatePostRequest{Title: "!!!", Content: "body"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestPostService_FeaturedIsAdminOnly(t *testing.T) {
	f := newPostFixture(t)

	p, err := f.svc.Create(context.Background(), f.author, &dto.CreatePostRequest{
		Title: "Featured by a member", Content: "body", Featured: true,
	})
	require.NoError(t, err)
	assert.False(t, p.Featured)

	yes := true
	_, err = f.svc.Update(context.Background(), f.author, p.ID, &dto.UpdatePostRequest{Featured: &yes})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	got, err := f.svc.Update(context.Background(), f.admin, p.ID, &dto.UpdatePostRequest{Featured: &yes})
	require.NoError(t, err)
	assert.True(t, got.Featured)
}

func TestPostService_GetHidesDrafts(t *testing.T) {
	f := newPostFixture(t)
	draft := f.create(t, "Work in progress", false)
	stranger := Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	_, err := f.svc.Get(context.Background(), nil, draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPostNotFound))

	_, err = f.svc.Get(context.Background(), &stranger, draft.Slug)
	assert.True(t, errors.Is(err, apperrors.ErrPostNotFound))

	got, err := f.svc.Get(context.Background(), &f.author, draft.Slug)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = f.svc.Get(context.Background(), &f.admin, draft.ID)
	assert.NoError(t, err)
}

func TestPostService_PublishAndArchive(t *testing.T) {
	f := newPostFixture(t)
	draft := f.create(t, "Ship it", false)
	stranger := Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	_, err := f.svc.Publish(context.Background(), stranger, draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	published, err := f.svc.Publish(context.Background(), f.author, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, []string{model.TopicPostPublished}, f.pub.Topics())

	_, err = f.svc.Publish(context.Background(), f.author, draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStatusChange))

	archived, err := f.svc.Archive(context.Background(), f.author, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostArchived, archived.Status)

	_, err = f.svc.Archive(context.Background(), f.author, draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStatusChange))
}

func TestPostService_ListPublishedIsScopedAndCached(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, "First post", true)
	q := url.Values{"postByTags": {"go"}}

	page, hit, err := f.svc.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), page.TotalRecords)

	req := f.posts.lastReq
	require.NotNil(t, req)
	assert.Contains(t, req.Filter, query.Clause(query.Eq{Field: "status", Value: string(model.PostPublished)}))
	assert.Contains(t, req.Filter, query.Clause(query.In{Field: "tags", Values: []any{"go"}}))

	f.posts.lastReq = nil
	cached, hit, err := f.svc.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Nil(t, f.posts.lastReq, "a hit does not reach the store")
	assert.Equal(t, page.TotalRecords, cached.TotalRecords)
	require.Len(t, cached.Results, 1)
	assert.Equal(t, "First post", cached.Results[0].Title)

	// a write bumps the namespace version
	f.create(t, "Second post", true)
	_, hit, err = f.svc.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPostService_ListAllHasNoDefaultScope(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, "Draft", false)

	page, err := f.svc.ListAll(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalRecords)
	assert.Empty(t, f.posts.lastReq.Filter)
}

func TestPostService_DeleteRemovesComments(t *testing.T) {
	f := newPostFixture(t)
	p := f.create(t, "Short lived", true)
	postID, _ := primitive.ObjectIDFromHex(p.ID)

	other := primitive.NewObjectID()
	for _, pid := range []primitive.ObjectID{postID, postID, other} {
		require.NoError(t, f.comments.Create(context.Background(), &model.Comment{PostID: pid, Content: "hi"}))
	}

	require.NoError(t, f.svc.Delete(context.Background(), f.author, p.ID))

	left := f.comments.all()
	require.Len(t, left, 1)
	assert.Equal(t, other, left[0].PostID)

	err := f.svc.Delete(context.Background(), f.author, p.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPostNotFound))

	err = f.svc.Delete(context.Background(), f.author, "bad-id")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
}
