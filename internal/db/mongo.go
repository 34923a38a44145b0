package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollControllers = "controllers"
	CollMaintenance = "maintenance_history"
	CollTelemetry   = "telemetry"
	CollUsers       = "users"
)

var (
	// ErrNotFound is returned when no document matches an id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for ids that are not ObjectID hex strings.
	ErrInvalidID = errors.New("invalid id")

	errNilCollection = errors.New("mongo collection is nil")
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the service queries rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollMaintenance: {
			{Keys: bson.D{{Key: "controller_id", Value: 1}, {Key: "maintenance_date", Value: -1}}},
			{Keys: bson.D{{Key: "maintenance_type", Value: 1}}},
		},
		CollTelemetry: {
			{Keys: bson.D{{Key: "controller_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		CollControllers: {
			{Keys: bson.D{{Key: "serial_number", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		CollUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, idx := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// notFound maps the driver's no-documents error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}
