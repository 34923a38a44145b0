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

// MongoControllerCollection implements ControllerCollection for MongoDB.
type MongoControllerCollection struct {
	Collection *mongo.Collection
}

// InsertController inserts a controller and sets its ID and timestamps.
func (c *MongoControllerCollection) InsertController(ctx context.Context, controller *models.Controller) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	if controller.ID.IsZero() {
		controller.ID = primitive.NewObjectID()
	}
	controller.CreatedAt = now
	controller.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, controller)
	return err
}

// FindControllers returns the controllers matching filter, ordered by name.
func (c *MongoControllerCollection) FindControllers(ctx context.Context, filter ControllerFilter) ([]models.Controller, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.RobotModel != "" {
		query["robot_model"] = filter.RobotModel
	}

	cursor, err := c.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	controllers := []models.Controller{}
	if err := cursor.All(ctx, &controllers); err != nil {
		return nil, err
	}
	return controllers, nil
}

// FindControllerByID finds a controller by its ID.
func (c *MongoControllerCollection) FindControllerByID(ctx context.Context, id string) (*models.Controller, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var controller models.Controller
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&controller); err != nil {
		return nil, notFound(err, "controller")
	}
	return &controller, nil
}

// UpdateController replaces the descriptive fields of a controller.
// Servo hours only ever move forward.
func (c *MongoControllerCollection) UpdateController(ctx context.Context, id string, controller models.Controller) error {
	if c.Collection == nil {
		return errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"name":                  controller.Name,
		"model":                 controller.Model,
		"robot_model":           controller.RobotModel,
		"category":              controller.Category,
		"location":              controller.Location,
		"daily_operating_hours": controller.DailyOperatingHours,
		"installed_at":          controller.InstalledAt,
		"updated_at":            time.Now().UTC(),
	}
	update := bson.M{
		"$set": set,
		"$max": bson.M{"servo_power_time": controller.ServoPowerTime},
	}
	// the serial number index is sparse, so blank serials are removed rather than stored
	if controller.SerialNumber == "" {
		update["$unset"] = bson.M{"serial_number": ""}
	} else {
		set["serial_number"] = controller.SerialNumber
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("controller %w", ErrNotFound)
	}
	return nil
}

// DeleteController deletes a controller by its ID.
func (c *MongoControllerCollection) DeleteController(ctx context.Context, id string) error {
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
		return fmt.Errorf("controller %w", ErrNotFound)
	}
	return nil
}

// AdvanceServoHours raises the controller's servo hours to hours if it is higher.
func (c *MongoControllerCollection) AdvanceServoHours(ctx context.Context, id string, hours int) error {
	if c.Collection == nil {
		return errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$max": bson.M{"servo_power_time": hours},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("controller %w", ErrNotFound)
	}
	return nil
}
