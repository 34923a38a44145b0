package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestController_Subject(t *testing.T) {
	id := primitive.NewObjectID()
	c := Controller{ID: id, Model: "YRC1000", RobotModel: "GP8", ServoPowerTime: 4200}

	s := c.Subject()
	assert.Equal(t, id.Hex(), s.ID)
	assert.Equal(t, "YRC1000", s.Model)
	assert.Equal(t, "GP8", s.RobotModel)
	assert.Equal(t, 4200, s.ServoPowerTime)
}

func TestRecords(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	history := []MaintenanceRecord{
		{ControllerID: "a", MaintenanceType: maintenance.TypeBattery, MaintenanceDate: date, ServoHours: 10, Notes: "ignored"},
		{ControllerID: "b", MaintenanceType: maintenance.TypeOverhaulParts, MaintenanceDate: date, ServoHours: 20},
	}

	records := Records(history)
	assert.Equal(t, []maintenance.Record{
		{ControllerID: "a", Type: maintenance.TypeBattery, Date: date, ServoHours: 10},
		{ControllerID: "b", Type: maintenance.TypeOverhaulParts, Date: date, ServoHours: 20},
	}, records)
}

func TestTelemetry_HasAlarm(t *testing.T) {
	assert.False(t, Telemetry{}.HasAlarm())
	assert.True(t, Telemetry{AlarmCode: 4100}.HasAlarm())
}
