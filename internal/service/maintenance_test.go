package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/db/dbtest"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/models"
)

func newTestMaintenanceService() (*MaintenanceService, *dbtest.MockControllerCollection, *dbtest.MockMaintenanceCollection) {
	controllers := new(dbtest.MockControllerCollection)
	records := new(dbtest.MockMaintenanceCollection)
	svc := NewMaintenanceService(controllers, records)
	svc.now = func() time.Time { return testNow }
	return svc, controllers, records
}

func TestMaintenanceService_CreateDefaults(t *testing.T) {
	svc, controllers, records := newTestMaintenanceService()
	c := newController("cell-a", 4321)
	controllers.On("FindControllerByID", mock.Anything, c.ID.Hex()).Return(&c, nil)
	records.On("InsertMaintenance", mock.Anything, mock.AnythingOfType("*models.MaintenanceRecord")).Return(nil)

	rec, err := svc.Create(context.Background(), models.CreateMaintenanceRequest{
		ControllerID:    c.ID.Hex(),
		MaintenanceType: "Battery",
		Technician:      "  K. Sato ",
	}, "alice")
	require.NoError(t, err)

	assert.Equal(t, maintenance.TypeBattery, rec.MaintenanceType)
	assert.Equal(t, 4321, rec.ServoHours)
	assert.Equal(t, testNow, rec.MaintenanceDate)
	assert.Equal(t, "K. Sato", rec.Technician)
	assert.Equal(t, "alice", rec.CreatedBy)
	records.AssertExpectations(t)
}

func TestMaintenanceService_CreateExplicitValues(t *testing.T) {
	svc, controllers, records := newTestMaintenanceService()
	c := newController("cell-a", 4321)
	controllers.On("FindControllerByID", mock.Anything, c.ID.Hex()).Return(&c, nil)
	records.On("InsertMaintenance", mock.Anything, mock.AnythingOfType("*models.MaintenanceRecord")).Return(nil)

	date := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	hours := 4000
	rec, err := svc.Create(context.Background(), models.CreateMaintenanceRequest{
		ControllerID:    c.ID.Hex(),
		MaintenanceType: "Overhaul - Belt",
		MaintenanceDate: &date,
		ServoHours:      &hours,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, maintenance.TypeOverhaulBelt, rec.MaintenanceType)
	assert.Equal(t, date, rec.MaintenanceDate)
	assert.Equal(t, 4000, rec.ServoHours)
}

func TestMaintenanceService_CreateRejects(t *testing.T) {
	svc, controllers, records := newTestMaintenanceService()
	c := newController("cell-a", 10)
	controllers.On("FindControllerByID", mock.Anything, c.ID.Hex()).Return(&c, nil)
	controllers.On("FindControllerByID", mock.Anything, "missing").Return(nil, db.ErrNotFound)

	future := testNow.Add(time.Hour)
	negative := -5
	ahead := 11

	tests := []struct {
		name    string
		req     models.CreateMaintenanceRequest
		wantErr error
	}{
		{"missing controller id", models.CreateMaintenanceRequest{MaintenanceType: "Battery"}, ErrInvalidInput},
		{"unknown type", models.CreateMaintenanceRequest{ControllerID: c.ID.Hex(), MaintenanceType: "Overhaul"}, ErrInvalidInput},
		{"negative hours", models.CreateMaintenanceRequest{ControllerID: c.ID.Hex(), MaintenanceType: "Battery", ServoHours: &negative}, ErrInvalidInput},
		{"hours ahead of controller", models.CreateMaintenanceRequest{ControllerID: c.ID.Hex(), MaintenanceType: "Battery", ServoHours: &ahead}, ErrInvalidInput},
		{"future date", models.CreateMaintenanceRequest{ControllerID: c.ID.Hex(), MaintenanceType: "Battery", MaintenanceDate: &future}, ErrInvalidInput},
		{"unknown controller", models.CreateMaintenanceRequest{ControllerID: "missing", MaintenanceType: "Battery"}, db.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req, "alice")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	records.AssertNotCalled(t, "InsertMaintenance", mock.Anything, mock.Anything)
}

func TestMaintenanceService_List(t *testing.T) {
	svc, _, records := newTestMaintenanceService()
	records.On("FindMaintenance", mock.Anything, models.MaintenanceFilter{ControllerID: "c1", MaintenanceType: maintenance.TypeTimingBelt}).
		Return([]models.MaintenanceRecord{{ControllerID: "c1"}}, nil)

	out, err := svc.List(context.Background(), "c1", "Timing Belt")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = svc.List(context.Background(), "c1", "timing belt")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMaintenanceService_Update(t *testing.T) {
	svc, _, records := newTestMaintenanceService()

	_, err := svc.Update(context.Background(), "r1", models.UpdateMaintenanceRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	notes := "replaced both batteries"
	tech := " J. Doe "
	trimmed := "J. Doe"
	updated := &models.MaintenanceRecord{Technician: trimmed, Notes: notes}
	records.On("UpdateMaintenanceNotes", mock.Anything, "r1", models.UpdateMaintenanceRequest{Technician: &trimmed, Notes: &notes}).
		Return(updated, nil)

	rec, err := svc.Update(context.Background(), "r1", models.UpdateMaintenanceRequest{Technician: &tech, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, updated, rec)
}

func TestMaintenanceService_Delete(t *testing.T) {
	svc, _, records := newTestMaintenanceService()
	records.On("DeleteMaintenance", mock.Anything, "r1").Return(nil)
	records.On("DeleteMaintenance", mock.Anything, "r2").Return(db.ErrNotFound)

	assert.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "r2"), db.ErrNotFound)
}
