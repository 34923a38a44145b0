package models

import (
	"time"

	"github.com/ukydev/robot-fleet/internal/maintenance"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Controller represents a robot controller and the manipulator it drives.
type Controller struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	SerialNumber        string             `json:"serial_number" bson:"serial_number,omitempty"`
	Model               string             `json:"model" bson:"model"`             // controller model, e.g. "YRC1000"
	RobotModel          string             `json:"robot_model" bson:"robot_model"` // manipulator model, e.g. "GP8"
	Category            string             `json:"category" bson:"category"`
	Location            string             `json:"location" bson:"location"`
	ServoPowerTime      int                `json:"servo_power_time" bson:"servo_power_time"` // cumulative servo-on hours
	DailyOperatingHours float64            `json:"daily_operating_hours,omitempty" bson:"daily_operating_hours,omitempty"`
	InstalledAt         *time.Time         `json:"installed_at,omitempty" bson:"installed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

// Subject returns the fields the maintenance calculator works on.
func (c Controller) Subject() maintenance.Subject {
	return maintenance.Subject{
		ID:             c.ID.Hex(),
		Model:          c.Model,
		RobotModel:     c.RobotModel,
		ServoPowerTime: c.ServoPowerTime,
	}
}
