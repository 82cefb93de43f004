package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WebhookStore interface {
	Create(ctx context.Context, hook *model.Webhook) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Webhook, error)
	List(ctx context.Context, req *query.Request) ([]model.Webhook, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Webhook, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Deliverer sends a single delivery synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, hook *model.Webhook, env webhook.Envelope) webhook.Result
	Forget(id primitive.ObjectID)
}

func WebhookRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("webhookDateRange").
		Search("searchWebhook", "name", "url").
		IDs("webhookByIds", "_id", query.ObjectIDParser).
		In("webhookByEvents", "events").
		Flag("active", "active")
}

type WebhookService struct {
	hooks     WebhookStore
	deliverer Deliverer
	listing   listing[model.Webhook, dto.WebhookResponse]
	log       *logger.Logger
	now       func() time.Time
}

func NewWebhookService(hooks WebhookStore, deliverer Deliverer, deps Deps) *WebhookService {
	deps = deps.normalized()
	return &WebhookService{
		hooks:     hooks,
		deliverer: deliverer,
		listing: listing[model.Webhook, dto.WebhookResponse]{
			engine:   deps.Engine,
			registry: WebhookRegistry(),
			store:    hooks,
			mapFn:    dto.NewWebhookResponse,
		},
		log: deps.Log,
		now: deps.Now,
	}
}

func newSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create registers a webhook. The secret is returned only here; one is
// generated when the request has none.
func (s *WebhookService) Create(ctx context.Context, req *dto.CreateWebhookRequest) (*dto.CreatedWebhookResponse, error) {
	ctx = serviceCtx(ctx, "webhooks.create")

	if err := webhook.ValidateTemplate(req.PayloadTemplate); err != nil {
		return nil, err
	}
	secret := req.Secret
	if secret == "" {
		var err error
		if secret, err = newSecret(); err != nil {
			return nil, wrapInternal(err)
		}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now().UTC()
	hook := &model.Webhook{
		Name:            strings.TrimSpace(req.Name),
		URL:             req.URL,
		Events:          req.Events,
		Secret:          secret,
		PayloadTemplate: req.PayloadTemplate,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.hooks.Create(ctx, hook); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create webhook").Err(err).Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Webhook created").
		String("webhook_id", hook.ID.Hex()).
		Strings("events", hook.Events).
		Log()

	return &dto.CreatedWebhookResponse{WebhookResponse: dto.NewWebhookResponse(hook), Secret: secret}, nil
}

func (s *WebhookService) get(ctx context.Context, rawID string) (*model.Webhook, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	hook, err := s.hooks.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if hook == nil {
		return nil, apperrors.ErrWebhookNotFound
	}
	return hook, nil
}

func (s *WebhookService) Get(ctx context.Context, rawID string) (*dto.WebhookResponse, error) {
	ctx = serviceCtx(ctx, "webhooks.get")

	hook, err := s.get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	res := dto.NewWebhookResponse(hook)
	return &res, nil
}

func (s *WebhookService) List(ctx context.Context, q url.Values) (*query.Page[dto.WebhookResponse], error) {
	ctx = serviceCtx(ctx, "webhooks.list")
	return s.listing.run(ctx, q, query.Scope{})
}

// Update edits a webhook and resets its breaker.
func (s *WebhookService) Update(ctx context.Context, rawID string, req *dto.UpdateWebhookRequest) (*dto.WebhookResponse, error) {
	ctx = serviceCtx(ctx, "webhooks.update")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		set["url"] = *req.URL
	}
	if req.Events != nil {
		set["events"] = req.Events
	}
	if req.Secret != nil {
		set["secret"] = *req.Secret
	}
	if req.PayloadTemplate != nil {
		if err := webhook.ValidateTemplate(*req.PayloadTemplate); err != nil {
			return nil, err
		}
		set["payloadTemplate"] = *req.PayloadTemplate
	}
	if req.Active != nil {
		set["active"] = *req.Active
		if *req.Active {
			set["failureCount"] = 0
		}
	}
	if len(set) == 0 {
		return s.Get(ctx, rawID)
	}

	hook, err := s.hooks.Update(ctx, id, set)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if hook == nil {
		return nil, apperrors.ErrWebhookNotFound
	}
	s.deliverer.Forget(id)

	s.log.InfoWithContext(ctx, "Webhook updated").
		String("webhook_id", id.Hex()).
		Int("fields", len(set)).
		Log()

	res := dto.NewWebhookResponse(hook)
	return &res, nil
}

func (s *WebhookService) Delete(ctx context.Context, rawID string) error {
	ctx = serviceCtx(ctx, "webhooks.delete")

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.hooks.Delete(ctx, id)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrWebhookNotFound
	}
	s.deliverer.Forget(id)

	s.log.InfoWithContext(ctx, "Webhook deleted").
		String("webhook_id", id.Hex()).
		Log()
	return nil
}

// Test delivers a sample payload right away, whether or not the webhook is
// active or subscribed to the topic.
func (s *WebhookService) Test(ctx context.Context, rawID string, req *dto.TestWebhookRequest) (*dto.DeliveryResponse, error) {
	ctx = serviceCtx(ctx, "webhooks.test")

	hook, err := s.get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	topic := req.Topic
	if topic == "" {
		if len(hook.Events) > 0 {
			topic = hook.Events[0]
		} else {
			topic = model.TopicUserCreated
		}
	}
	data := any(req.Data)
	if req.Data == nil {
		data = map[string]any{"test": true}
	}

	res := s.deliverer.Deliver(ctx, hook, webhook.Envelope{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: s.now().UTC(),
		Data:       data,
	})

	out := &dto.DeliveryResponse{
		DeliveryID: res.DeliveryID,
		StatusCode: res.StatusCode,
		DurationMs: res.Duration.Milliseconds(),
		Delivered:  res.Err == nil,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out, nil
}
