package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/models"
)

// MaintenanceService validates and stores maintenance records.
type MaintenanceService struct {
	controllers db.ControllerCollection
	history     db.MaintenanceCollection
	now         func() time.Time
}

// NewMaintenanceService creates a maintenance service.
func NewMaintenanceService(controllers db.ControllerCollection, history db.MaintenanceCollection) *MaintenanceService {
	return &MaintenanceService{
		controllers: controllers,
		history:     history,
		now:         time.Now,
	}
}

// Create logs a maintenance event. Servo hours default to the controller's current
// reading and the date to now.
func (s *MaintenanceService) Create(ctx context.Context, req models.CreateMaintenanceRequest, createdBy string) (*models.MaintenanceRecord, error) {
	if strings.TrimSpace(req.ControllerID) == "" {
		return nil, fmt.Errorf("%w: controller_id is required", ErrInvalidInput)
	}
	typ, err := maintenance.ParseType(req.MaintenanceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.ServoHours != nil && *req.ServoHours < 0 {
		return nil, fmt.Errorf("%w: servo_hours must not be negative", ErrInvalidInput)
	}

	controller, err := s.controllers.FindControllerByID(ctx, req.ControllerID)
	if err != nil {
		return nil, fmt.Errorf("loading controller: %w", err)
	}
	if req.ServoHours != nil && *req.ServoHours > controller.ServoPowerTime {
		return nil, fmt.Errorf("%w: servo_hours %d exceeds the controller's current %d",
			ErrInvalidInput, *req.ServoHours, controller.ServoPowerTime)
	}

	now := s.now().UTC()
	record := &models.MaintenanceRecord{
		ControllerID:    controller.ID.Hex(),
		MaintenanceType: typ,
		MaintenanceDate: now,
		ServoHours:      controller.ServoPowerTime,
		Technician:      strings.TrimSpace(req.Technician),
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}
	if req.MaintenanceDate != nil {
		if req.MaintenanceDate.After(now) {
			return nil, fmt.Errorf("%w: maintenance_date is in the future", ErrInvalidInput)
		}
		record.MaintenanceDate = req.MaintenanceDate.UTC()
	}
	if req.ServoHours != nil {
		record.ServoHours = *req.ServoHours
	}

	if err := s.history.InsertMaintenance(ctx, record); err != nil {
		return nil, fmt.Errorf("saving maintenance record: %w", err)
	}

	log.WithFields(log.Fields{
		"controller_id": record.ControllerID,
		"type":          record.MaintenanceType,
		"servo_hours":   record.ServoHours,
		"created_by":    createdBy,
	}).Info("Maintenance logged")
	return record, nil
}

// List returns history matching the raw query values, newest first.
func (s *MaintenanceService) List(ctx context.Context, controllerID, maintenanceType string) ([]models.MaintenanceRecord, error) {
	filter := models.MaintenanceFilter{ControllerID: controllerID}
	if maintenanceType != "" {
		typ, err := maintenance.ParseType(maintenanceType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.MaintenanceType = typ
	}
	return s.history.FindMaintenance(ctx, filter)
}

// Update changes the technician and notes of a record. Other fields are immutable.
func (s *MaintenanceService) Update(ctx context.Context, id string, req models.UpdateMaintenanceRequest) (*models.MaintenanceRecord, error) {
	if req.Technician == nil && req.Notes == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if req.Technician != nil {
		trimmed := strings.TrimSpace(*req.Technician)
		req.Technician = &trimmed
	}
	return s.history.UpdateMaintenanceNotes(ctx, id, req)
}

// Delete removes a record.
func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	if err := s.history.DeleteMaintenance(ctx, id); err != nil {
		return err
	}
	log.WithField("id", id).Info("Maintenance record deleted")
	return nil
}
