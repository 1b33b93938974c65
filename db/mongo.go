package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"model-eval/config"
	"model-eval/internal/logger"
	"model-eval/repositories"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Init initializes the global Mongo client and database using config values.
func Init(ctx context.Context, cfg config.MongoConfig) error {
	var initErr error
	clientOnce.Do(func() {
		cl, d, err := Connect(ctx, cfg.URI, cfg.Database)
		if err != nil {
			initErr = err
			return
		}
		client = cl
		db = d
		logger.InfoWithFields("MongoDB connected and indexes ensured", logger.Fields{"database": cfg.Database})
	})
	return initErr
}

// Connect opens a client, pings the primary and ensures indexes.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	// Ping to verify connection
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, err
	}
	d := cl.Database(dbName)
	if err := ensureIndexes(ctx, d); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, err
	}
	return cl, d, nil
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

// Disconnect closes the global client if Init succeeded.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// prompts: owner listing, newest first
	if _, err := d.Collection(repositories.PromptsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_user_tags"),
		},
	}); err != nil {
		return err
	}

	// evaluations: owner listing, per prompt lookups, per run lookups
	if _, err := d.Collection(repositories.EvaluationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "prompt_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_prompt_user"),
		},
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetName("idx_run_id"),
		},
	}); err != nil {
		return err
	}
	return nil
}
