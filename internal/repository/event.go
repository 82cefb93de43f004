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

type EventRepository struct {
	store mongoStore[model.Event]
}

func NewEventRepository(db *mongo.Database, log *logger.Logger) *EventRepository {
	return &EventRepository{store: newMongoStore[model.Event](db, constants.CollectionEvents, "startDate", log)}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	id, err := r.store.insert(ctx, event)
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error) {
	return r.store.findByID(ctx, id)
}

func (r *EventRepository) List(ctx context.Context, req *query.Request) ([]model.Event, int64, error) {
	return r.store.list(ctx, req)
}

func (r *EventRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Event, error) {
	return r.store.setByID(ctx, id, set)
}

func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}

// AddAttendee registers userID if the event is open, has a free seat and
// the user is not registered yet. It returns nil when any condition fails;
// the check and the write are a single atomic update.
func (r *EventRepository) AddAttendee(ctx context.Context, id, userID primitive.ObjectID) (*model.Event, error) {
	filter := bson.M{
		"_id":       id,
		"status":    bson.M{"$in": bson.A{model.EventUpcoming, model.EventOngoing}},
		"attendees": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"capacity": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$size": bson.M{"$ifNull": bson.A{"$attendees", bson.A{}}}}, "$capacity"}}},
		},
	}
	return r.store.update(ctx, filter, bson.M{
		"$push": bson.M{"attendees": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveAttendee unregisters userID; nil when the user was not registered.
func (r *EventRepository) RemoveAttendee(ctx context.Context, id, userID primitive.ObjectID) (*model.Event, error) {
	return r.store.update(ctx, bson.M{"_id": id, "attendees": userID}, bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SyncStatuses moves events along UPCOMING -> ONGOING -> ENDED according to
// their schedule and reports how many changed.
func (r *EventRepository) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	started, err := r.store.updateMany(ctx,
		bson.M{"status": model.EventUpcoming, "startDate": bson.M{"$lte": now}, "endDate": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"status": model.EventOngoing, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	ended, err := r.store.updateMany(ctx,
		bson.M{"status": bson.M{"$in": bson.A{model.EventUpcoming, model.EventOngoing}}, "endDate": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": model.EventEnded, "updatedAt": now}},
	)
	if err != nil {
		return started, err
	}
	return started + ended, nil
}
