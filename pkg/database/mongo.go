package database

import (
	"context"
	"fmt"

	"github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDB connects to MongoDB and verifies the connection.
func NewMongoDB(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// CloseMongo disconnects the client.
func CloseMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// MongoIndexes lists the indexes every collection needs. Creating an index
// that already exists is a no-op, so EnsureMongoIndexes can run on every boot.
func MongoIndexes() map[string][]mongo.IndexModel {
	byDate := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}
	byStatus := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}

	return map[string][]mongo.IndexModel{
		constants.CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "refreshTokenExpiresAt", Value: 1}}, Options: options.Index().SetSparse(true)},
			byStatus,
			byDate,
		},
		constants.CollectionPosts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			byStatus,
			byDate,
		},
		constants.CollectionComments: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			byDate,
		},
		constants.CollectionEvents: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}}},
			byStatus,
			byDate,
		},
		constants.CollectionLeads: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "interest", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "source", Value: 1}}},
			byStatus,
			byDate,
		},
		constants.CollectionWebhooks: {
			{Keys: bson.D{{Key: "events", Value: 1}, {Key: "active", Value: 1}}},
			byDate,
		},
	}
}

// EnsureMongoIndexes creates the indexes from MongoIndexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range MongoIndexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
