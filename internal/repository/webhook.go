package repository

import (
	"context"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WebhookRepository struct {
	store mongoStore[model.Webhook]
}

func NewWebhookRepository(db *mongo.Database, log *logger.Logger) *WebhookRepository {
	return &WebhookRepository{store: newMongoStore[model.Webhook](db, constants.CollectionWebhooks, "createdAt", log)}
}

func (r *WebhookRepository) Create(ctx context.Context, hook *model.Webhook) error {
	id, err := r.store.insert(ctx, hook)
	if err != nil {
		return err
	}
	hook.ID = id
	return nil
}

func (r *WebhookRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Webhook, error) {
	return r.store.findByID(ctx, id)
}

func (r *WebhookRepository) List(ctx context.Context, req *query.Request) ([]model.Webhook, int64, error) {
	return r.store.list(ctx, req)
}

func (r *WebhookRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Webhook, error) {
	return r.store.setByID(ctx, id, set)
}

func (r *WebhookRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}

// ActiveFor returns the active webhooks subscribed to topic.
func (r *WebhookRepository) ActiveFor(ctx context.Context, topic string) ([]model.Webhook, error) {
	ctx = r.store.ctx(ctx, "activeFor")
	cursor, err := r.store.coll.Find(ctx, bson.M{"active": true, "events": topic})
	if err != nil {
		return nil, err
	}
	var hooks []model.Webhook
	if err := cursor.All(ctx, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// RecordDelivery stores the outcome of a delivery attempt. Failures
// increment failureCount; a success resets it.
func (r *WebhookRepository) RecordDelivery(ctx context.Context, id primitive.ObjectID, statusCode int, deliveryErr error) error {
	now := time.Now().UTC()
	update := bson.M{}
	if deliveryErr == nil {
		update["$set"] = bson.M{"lastStatusCode": statusCode, "lastDeliveredAt": now, "failureCount": 0, "lastError": "", "updatedAt": now}
	} else {
		update["$set"] = bson.M{"lastStatusCode": statusCode, "lastError": deliveryErr.Error(), "updatedAt": now}
		update["$inc"] = bson.M{"failureCount": 1}
	}
	_, err := r.store.coll.UpdateOne(r.store.ctx(ctx, "recordDelivery"), bson.M{"_id": id}, update)
	return err
}
