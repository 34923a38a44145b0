package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/robot-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record and sets its ID and timestamps.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindMaintenance returns matching records, most recent maintenance first.
func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	query := bson.M{}
	if filter.ControllerID != "" {
		query["controller_id"] = filter.ControllerID
	}
	if filter.MaintenanceType != "" {
		query["maintenance_type"] = filter.MaintenanceType
	}

	opts := options.Find().SetSort(bson.D{{Key: "maintenance_date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.MaintenanceRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var record models.MaintenanceRecord
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		return nil, notFound(err, "maintenance record")
	}
	return &record, nil
}

// UpdateMaintenanceNotes changes the technician and notes of a record and
// returns the updated record. Other fields are immutable.
func (c *MongoMaintenanceCollection) UpdateMaintenanceNotes(ctx context.Context, id string, update models.UpdateMaintenanceRequest) (*models.MaintenanceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Technician != nil {
		set["technician"] = *update.Technician
	}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record models.MaintenanceRecord
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&record)
	if err != nil {
		return nil, notFound(err, "maintenance record")
	}
	return &record, nil
}

// DeleteMaintenance deletes a maintenance record by its ID.
func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("maintenance record %w", ErrNotFound)
	}
	return nil
}
