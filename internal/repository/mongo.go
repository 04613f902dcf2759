package repository

import (
	"context"
	"fmt"
	"time"

	"nearby-activity-backend/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// queryTimeout bounds every one-shot document store call
const queryTimeout = 10 * time.Second

// Collection names
const (
	collUsers       = "users"
	collConnections = "connections"
	collPings       = "pings"
	collEvents      = "events"
)

// ConnectMongo opens and pings the document store.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client.Database(cfg.Database), nil
}
