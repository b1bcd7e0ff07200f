package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"product-catalog/internal/config"
)

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens the MongoDB connection with a bounded retry loop. Each
// attempt connects and pings within the configured timeout; the backoff
// doubles between attempts.
func Connect(ctx context.Context, log *slog.Logger, cfg *config.Config) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(cfg.MongoConnectTimeout).
		SetConnectTimeout(cfg.MongoConnectTimeout).
		SetMonitor(otelmongo.NewMonitor())

	var lastErr error
	backoff := cfg.MongoRetryBackoff

	for attempt := 1; attempt <= cfg.MongoMaxRetries; attempt++ {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				log.Info("Connected to MongoDB successfully", slog.Int("attempt", attempt))
				db := client.Database(cfg.MongoDBName)
				if idxErr := ensureIndexes(ctx, db); idxErr != nil {
					log.Warn("Failed to create product indexes", slog.String("error", idxErr.Error()))
				}
				return &Mongo{Client: client, Database: db}, nil
			}
			_ = client.Disconnect(ctx)
		}

		lastErr = err
		log.Warn("MongoDB connection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", cfg.MongoMaxRetries),
			slog.String("error", err.Error()),
		)

		if attempt < cfg.MongoMaxRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}

	return nil, lastErr
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("products").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}
