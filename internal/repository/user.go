package repository

import (
	"context"
	"errors"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

type UserRepository struct {
	store mongoStore[model.User]
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{store: newMongoStore[model.User](db, constants.CollectionUsers, "createdAt", log)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	id, err := r.store.insert(ctx, user)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.store.findByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.store.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context, req *query.Request) ([]model.User, int64, error) {
	return r.store.list(ctx, req)
}

// Update sets fields on the user and returns the updated document.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	return r.store.setByID(ctx, id, set)
}

// BumpTokenVersion sets fields and increments tokenVersion, invalidating
// every access token issued before.
func (r *UserRepository) BumpTokenVersion(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	set["updatedAt"] = time.Now().UTC()
	return r.store.update(ctx, bson.M{"_id": id}, bson.M{
		"$set": set,
		"$inc": bson.M{"tokenVersion": 1},
	})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}

// CountByStatus counts users matching filter per status.
func (r *UserRepository) CountByStatus(ctx context.Context, filter query.Filter) (map[string]int64, error) {
	return r.store.countBy(ctx, filter.BSON(), "status")
}

// ClearExpiredRefreshTokens drops refresh tokens that expired before now.
func (r *UserRepository) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.store.updateMany(ctx,
		bson.M{"refreshTokenExpiresAt": bson.M{"$lt": now}},
		bson.M{"$unset": bson.M{"refreshTokenHash": "", "refreshTokenExpiresAt": ""}},
	)
}
