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

type CommentRepository struct {
	store mongoStore[model.Comment]
}

func NewCommentRepository(db *mongo.Database, log *logger.Logger) *CommentRepository {
	return &CommentRepository{store: newMongoStore[model.Comment](db, constants.CollectionComments, "createdAt", log)}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	id, err := r.store.insert(ctx, comment)
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	return r.store.findByID(ctx, id)
}

func (r *CommentRepository) List(ctx context.Context, req *query.Request) ([]model.Comment, int64, error) {
	return r.store.list(ctx, req)
}

func (r *CommentRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Comment, error) {
	return r.store.setByID(ctx, id, set)
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.deleteByID(ctx, id)
}

// DeleteByPost removes every comment of a post.
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.store.coll.DeleteMany(r.store.ctx(ctx, "deleteByPost"), bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
