package repository

import (
	"context"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PostRepository struct {
	store mongoStore[model.Post]
}

func NewPostRepository(db *mongo.Database, log *logger.Logger) *PostRepository {
	return &PostRepository{store: newMongoStore[model.Post](db, constants.CollectionPosts, "createdAt", log)}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	id, err := r.store.insert(ctx, post)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	return r.store.findByID(ctx, id)
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return r.store.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) List(ctx context.Context, req *query.Request) ([]model.Post, int64, error) {
	return r.store.list(ctx, req)
}

func (r *PostRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Post, error) {
	post, err := r.store.setByID(ctx, id, set)
	if isDuplicateKey(err) {
		return nil, ErrDuplicate
	}
	return post, err
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}
