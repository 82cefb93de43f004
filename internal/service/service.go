package service

import (
	"context"
	"net/url"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role model.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// Owns reports whether the actor may modify something created by owner.
func (a Actor) Owns(owner primitive.ObjectID) bool {
	return a.IsAdmin() || a.ID == owner
}

// ActorFromContext reads the caller set by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	id, err := primitive.ObjectIDFromHex(ctxutil.GetUserID(ctx))
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: model.UserRole(ctxutil.GetUserRole(ctx))}, true
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.Detail(apperrors.ErrInvalidIdentifier, "%q", raw)
	}
	return id, nil
}

func wrapInternal(err error) error {
	if apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

func serviceCtx(ctx context.Context, function string) context.Context {
	return ctxutil.WithFunction(ctx, "service", function)
}

// Lister is the listing half of every store.
type Lister[M any] interface {
	List(ctx context.Context, req *query.Request) ([]M, int64, error)
}

// listing runs one module listing: normalize and compile q, fetch count and
// page concurrently in the store, then map and assemble the page.
type listing[M, R any] struct {
	engine   *query.Engine
	registry *query.Registry
	store    Lister[M]
	mapFn    func(*M) R
}

func (l listing[M, R]) run(ctx context.Context, q url.Values, scope query.Scope) (*query.Page[R], error) {
	req, err := l.engine.Build(q, l.registry, scope)
	if err != nil {
		return nil, err
	}
	records, total, err := l.store.List(ctx, req)
	if err != nil {
		return nil, wrapInternal(err)
	}

	out := make([]R, len(records))
	for i := range records {
		out[i] = l.mapFn(&records[i])
	}
	page := query.NewPage(req.PageParams, total, out)
	return &page, nil
}

// cachedListing puts a listing behind the versioned list cache.
type cachedListing[M, R any] struct {
	listing[M, R]
	namespace string
	cache     *cache.ListCache
	metrics   *metrics.Metrics
}

func (l cachedListing[M, R]) run(ctx context.Context, q url.Values, scope query.Scope) (*query.Page[R], bool, error) {
	if l.cache == nil {
		page, err := l.listing.run(ctx, q, scope)
		return page, false, err
	}

	key := l.cache.Key(ctx, l.namespace, q)
	var cached query.Page[R]
	if l.cache.Get(ctx, key, &cached) {
		l.observe(true)
		return &cached, true, nil
	}
	l.observe(false)

	page, err := l.listing.run(ctx, q, scope)
	if err != nil {
		return nil, false, err
	}
	l.cache.Set(ctx, key, page)
	return page, false, nil
}

func (l cachedListing[M, R]) observe(hit bool) {
	if l.metrics != nil {
		l.metrics.ListCache(l.namespace, hit)
	}
}

func (l cachedListing[M, R]) invalidate(ctx context.Context) {
	if l.cache != nil {
		l.cache.Invalidate(ctx, l.namespace)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}

func publisherOrNop(p webhook.Publisher) webhook.Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Deps bundles what every module service needs.
type Deps struct {
	Engine    *query.Engine
	Publisher webhook.Publisher
	Log       *logger.Logger
	Now       func() time.Time
}

func (d Deps) normalized() Deps {
	if d.Engine == nil {
		d.Engine = query.NewEngine(constants.DefaultLimit, constants.MaxLimit)
	}
	d.Publisher = publisherOrNop(d.Publisher)
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
