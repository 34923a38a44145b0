package db

import (
	"context"

	"github.com/ukydev/robot-fleet/internal/models"
)

// ControllerCollection defines the interface for controller data operations.
type ControllerCollection interface {
	InsertController(ctx context.Context, controller *models.Controller) error
	FindControllers(ctx context.Context, filter ControllerFilter) ([]models.Controller, error)
	FindControllerByID(ctx context.Context, id string) (*models.Controller, error)
	UpdateController(ctx context.Context, id string, controller models.Controller) error
	DeleteController(ctx context.Context, id string) error
	// AdvanceServoHours raises servo_power_time to hours; lower values are ignored.
	AdvanceServoHours(ctx context.Context, id string, hours int) error
}

// ControllerFilter narrows a controller query. Empty fields match everything.
type ControllerFilter struct {
	Category   string
	Location   string
	RobotModel string
}

// MaintenanceCollection defines the interface for maintenance record operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error
	FindMaintenance(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRecord, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	UpdateMaintenanceNotes(ctx context.Context, id string, update models.UpdateMaintenanceRequest) (*models.MaintenanceRecord, error)
	DeleteMaintenance(ctx context.Context, id string) error
}

// TelemetryCollection defines the interface for telemetry sample operations.
type TelemetryCollection interface {
	InsertTelemetry(ctx context.Context, telemetry *models.Telemetry) error
	FindTelemetry(ctx context.Context, query TelemetryQuery) ([]models.Telemetry, error)
}

// TelemetryQuery selects telemetry for one controller, newest first.
type TelemetryQuery struct {
	ControllerID string
	AlarmsOnly   bool
	Limit        int64
}
