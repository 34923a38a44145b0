// Package dbtest provides testify mocks of the db collection interfaces.
package dbtest

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/models"
)

var (
	_ db.ControllerCollection  = (*MockControllerCollection)(nil)
	_ db.MaintenanceCollection = (*MockMaintenanceCollection)(nil)
	_ db.TelemetryCollection   = (*MockTelemetryCollection)(nil)
	_ db.UserCollection        = (*MockUserCollection)(nil)
)

// MockControllerCollection is a mock implementation of db.ControllerCollection.
type MockControllerCollection struct {
	mock.Mock
}

func (m *MockControllerCollection) InsertController(ctx context.Context, controller *models.Controller) error {
	args := m.Called(ctx, controller)
	return args.Error(0)
}

func (m *MockControllerCollection) FindControllers(ctx context.Context, filter db.ControllerFilter) ([]models.Controller, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Controller), args.Error(1)
}

func (m *MockControllerCollection) FindControllerByID(ctx context.Context, id string) (*models.Controller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Controller), args.Error(1)
}

func (m *MockControllerCollection) UpdateController(ctx context.Context, id string, controller models.Controller) error {
	args := m.Called(ctx, id, controller)
	return args.Error(0)
}

func (m *MockControllerCollection) DeleteController(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockControllerCollection) AdvanceServoHours(ctx context.Context, id string, hours int) error {
	args := m.Called(ctx, id, hours)
	return args.Error(0)
}

// MockMaintenanceCollection is a mock implementation of db.MaintenanceCollection.
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) FindMaintenance(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) UpdateMaintenanceNotes(ctx context.Context, id string, update models.UpdateMaintenanceRequest) (*models.MaintenanceRecord, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTelemetryCollection is a mock implementation of db.TelemetryCollection.
type MockTelemetryCollection struct {
	mock.Mock
}

func (m *MockTelemetryCollection) InsertTelemetry(ctx context.Context, telemetry *models.Telemetry) error {
	args := m.Called(ctx, telemetry)
	return args.Error(0)
}

func (m *MockTelemetryCollection) FindTelemetry(ctx context.Context, query db.TelemetryQuery) ([]models.Telemetry, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Telemetry), args.Error(1)
}

// MockUserCollection is a mock implementation of db.UserCollection.
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
