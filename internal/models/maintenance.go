package models

import (
	"time"

	"github.com/ukydev/robot-fleet/internal/maintenance"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceRecord is one maintenance event logged against a controller.
// Only Technician and Notes may change after creation.
type MaintenanceRecord struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ControllerID    string             `json:"controller_id" bson:"controller_id"`
	MaintenanceType maintenance.Type   `json:"maintenance_type" bson:"maintenance_type"`
	MaintenanceDate time.Time          `json:"maintenance_date" bson:"maintenance_date"`
	ServoHours      int                `json:"servo_hours" bson:"servo_hours"` // controller servo hours when the work was done
	Technician      string             `json:"technician" bson:"technician"`
	Notes           string             `json:"notes" bson:"notes"`
	CreatedBy       string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// Record returns the fields the maintenance calculator works on.
func (m MaintenanceRecord) Record() maintenance.Record {
	return maintenance.Record{
		ControllerID: m.ControllerID,
		Type:         m.MaintenanceType,
		Date:         m.MaintenanceDate,
		ServoHours:   m.ServoHours,
	}
}

// Records converts a history slice for the calculator.
func Records(history []MaintenanceRecord) []maintenance.Record {
	out := make([]maintenance.Record, 0, len(history))
	for _, m := range history {
		out = append(out, m.Record())
	}
	return out
}

// MaintenanceFilter narrows a history query. Empty fields match everything.
type MaintenanceFilter struct {
	ControllerID    string
	MaintenanceType maintenance.Type
}

// CreateMaintenanceRequest is the body of a new maintenance record.
// ServoHours defaults to the controller's current servo hours and
// MaintenanceDate to the time of the request.
type CreateMaintenanceRequest struct {
	ControllerID    string     `json:"controller_id"`
	MaintenanceType string     `json:"maintenance_type"`
	MaintenanceDate *time.Time `json:"maintenance_date,omitempty"`
	ServoHours      *int       `json:"servo_hours,omitempty"`
	Technician      string     `json:"technician"`
	Notes           string     `json:"notes"`
}

// UpdateMaintenanceRequest carries the editable fields of a maintenance record.
type UpdateMaintenanceRequest struct {
	Technician *string `json:"technician,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}
