package repository

import (
	"context"
	"errors"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore holds the collection plumbing shared by the document
// repositories. Lookups that find nothing return (nil, nil).
type mongoStore[T any] struct {
	coll      *mongo.Collection
	sortField string
	log       *logger.Logger
}

func newMongoStore[T any](db *mongo.Database, name, sortField string, log *logger.Logger) mongoStore[T] {
	return mongoStore[T]{coll: db.Collection(name), sortField: sortField, log: log}
}

func (s mongoStore[T]) ctx(ctx context.Context, function string) context.Context {
	return ctxutil.WithFunction(ctx, "repository", s.coll.Name()+"."+function)
}

func (s mongoStore[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	ctx = s.ctx(ctx, "insert")

	start := time.Now()
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to insert document").Duration(time.Since(start)).Err(err).Log()
		return primitive.NilObjectID, err
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	s.log.DebugWithContext(ctx, "Document inserted").
		String("id", id.Hex()).
		Duration(time.Since(start)).
		Log()
	return id, nil
}

func (s mongoStore[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx = s.ctx(ctx, "findOne")

	var doc T
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to find document").Err(err).Log()
		return nil, err
	}
	return &doc, nil
}

func (s mongoStore[T]) findByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// update applies an update document to the first match and returns the
// document after the update.
func (s mongoStore[T]) update(ctx context.Context, filter, update bson.M) (*T, error) {
	ctx = s.ctx(ctx, "update")

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to update document").Err(err).Log()
		return nil, err
	}
	return &doc, nil
}

func (s mongoStore[T]) setByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	set["updatedAt"] = time.Now().UTC()
	return s.update(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s mongoStore[T]) updateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	ctx = s.ctx(ctx, "updateMany")

	res, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to update documents").Err(err).Log()
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s mongoStore[T]) deleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx = s.ctx(ctx, "delete")

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to delete document").String("id", id.Hex()).Err(err).Log()
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s mongoStore[T]) count(ctx context.Context, filter bson.M) (int64, error) {
	return s.coll.CountDocuments(ctx, filter)
}

// list runs count and find for one page concurrently against the same filter.
func (s mongoStore[T]) list(ctx context.Context, req *query.Request) ([]T, int64, error) {
	ctx = s.ctx(ctx, "list")
	filter := req.Filter.BSON()

	start := time.Now()
	records, total, err := query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			return s.coll.CountDocuments(ctx, filter)
		},
		func(ctx context.Context) ([]T, error) {
			cursor, err := s.coll.Find(ctx, filter, req.FindOptions(s.sortField))
			if err != nil {
				return nil, err
			}
			records := make([]T, 0, req.Limit)
			if err := cursor.All(ctx, &records); err != nil {
				return nil, err
			}
			return records, nil
		},
	)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to list documents").
			Int("page", req.Page).
			Int("limit", req.Limit).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	s.log.DebugWithContext(ctx, "Documents listed").
		Int("page", req.Page).
		Int("returned_count", len(records)).
		Int64("total", total).
		Duration(time.Since(start)).
		Log()
	return records, total, nil
}

// countBy groups documents matching filter by field and counts them.
func (s mongoStore[T]) countBy(ctx context.Context, filter bson.M, field string) (map[string]int64, error) {
	ctx = s.ctx(ctx, "countBy")

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to aggregate").String("field", field).Err(err).Log()
		return nil, err
	}

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
