package db

import (
	"context"

	"github.com/ukydev/robot-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTelemetryLimit = 500

// MongoTelemetryCollection implements TelemetryCollection for MongoDB.
type MongoTelemetryCollection struct {
	Collection *mongo.Collection
}

// InsertTelemetry inserts a telemetry sample.
func (c *MongoTelemetryCollection) InsertTelemetry(ctx context.Context, telemetry *models.Telemetry) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if telemetry.ID.IsZero() {
		telemetry.ID = primitive.NewObjectID()
	}
	_, err := c.Collection.InsertOne(ctx, telemetry)
	return err
}

// FindTelemetry returns the newest samples of one controller.
func (c *MongoTelemetryCollection) FindTelemetry(ctx context.Context, query TelemetryQuery) ([]models.Telemetry, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{"controller_id": query.ControllerID}
	if query.AlarmsOnly {
		filter["alarm_code"] = bson.M{"$gt": 0}
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultTelemetryLimit
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	samples := []models.Telemetry{}
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}
