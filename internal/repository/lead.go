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

type LeadRepository struct {
	store mongoStore[model.Lead]
}

func NewLeadRepository(db *mongo.Database, log *logger.Logger) *LeadRepository {
	return &LeadRepository{store: newMongoStore[model.Lead](db, constants.CollectionLeads, "createdAt", log)}
}

func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	id, err := r.store.insert(ctx, lead)
	if err != nil {
		return err
	}
	lead.ID = id
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Lead, error) {
	return r.store.findByID(ctx, id)
}

// FindRecent returns a lead with the same email and interest created after since.
func (r *LeadRepository) FindRecent(ctx context.Context, email, interest string, since time.Time) (*model.Lead, error) {
	return r.store.findOne(ctx, bson.M{
		"email":     email,
		"interest":  interest,
		"createdAt": bson.M{"$gte": since},
	})
}

func (r *LeadRepository) List(ctx context.Context, req *query.Request) ([]model.Lead, int64, error) {
	return r.store.list(ctx, req)
}

func (r *LeadRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Lead, error) {
	return r.store.setByID(ctx, id, set)
}

func (r *LeadRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}
