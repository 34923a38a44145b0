package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const evalAt = "2025-06-01T12:00:00Z"

func writeJSONFile(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fleetFixture(t *testing.T) (string, string) {
	t.Helper()
	fresh := models.Controller{ID: primitive.NewObjectID(), Name: "cell-a", Model: "YRC1000", RobotModel: "GP8", ServoPowerTime: 100}
	worn := models.Controller{ID: primitive.NewObjectID(), Name: "cell-b", Model: "YRC1000", RobotModel: "GP8", ServoPowerTime: 7000}
	history := []models.MaintenanceRecord{{
		ControllerID:    worn.ID.Hex(),
		MaintenanceType: maintenance.TypeGeneral,
		MaintenanceDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ServoHours:      6800,
	}}
	return writeJSONFile(t, "controllers.json", []models.Controller{fresh, worn}),
		writeJSONFile(t, "history.json", history)
}

func TestStatusCmd_Table(t *testing.T) {
	controllers, history := fleetFixture(t)

	out, err := execute(t, "status", "--controllers", controllers, "--history", history, "--at", evalAt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CONTROLLER")
	// cell-b has overdue timing belt and battery, so it sorts first
	assert.True(t, strings.HasPrefix(lines[1], "cell-b"), lines[1])
	assert.Contains(t, lines[1], "OVERDUE")
	assert.Contains(t, lines[1], "Timing Belt")
	assert.NotContains(t, lines[1], "General Maintenance")
	assert.True(t, strings.HasPrefix(lines[2], "cell-a"), lines[2])
	assert.Contains(t, lines[2], "OK")
}

func TestStatusCmd_JSONAndFailOn(t *testing.T) {
	controllers, history := fleetFixture(t)

	out, err := execute(t, "status", "--controllers", controllers, "--history", history, "--at", evalAt, "--json")
	require.NoError(t, err)
	var parsed []struct {
		Overall string `json:"overall_status"`
		Items   []json.RawMessage
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "OVERDUE", parsed[0].Overall)
	assert.Len(t, parsed[0].Items, len(maintenance.AllTypes))

	_, err = execute(t, "status", "--controllers", controllers, "--history", history, "--at", evalAt, "--fail-on", "overdue")
	assert.ErrorIs(t, err, ErrThresholdReached)

	_, err = execute(t, "status", "--controllers", controllers, "--at", evalAt, "--fail-on", "sometimes")
	assert.Error(t, err)
}

func TestStatusCmd_Errors(t *testing.T) {
	_, err := execute(t, "status")
	assert.Error(t, err)

	_, err = execute(t, "status", "--controllers", filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = execute(t, "status", "--controllers", bad)
	assert.Error(t, err)

	_, err = execute(t, "status", "--controllers", bad, "--at", "yesterday")
	assert.Error(t, err)
}

func TestIntervalsCmd(t *testing.T) {
	out, err := execute(t, "intervals", "--robot-model", "AR1440")
	require.NoError(t, err)
	assert.Contains(t, out, "Periodic maintenance: 6000 h")
	assert.Contains(t, out, "Internal cable:       12000 h")

	table := filepath.Join(t.TempDir(), "intervals.yaml")
	require.NoError(t, os.WriteFile(table, []byte("models:\n  - family: AR\n    periodic_maintenance: 3000\n    overhaul: 9000\n"), 0o600))
	out, err = execute(t, "--interval-table", table, "intervals", "--robot-model", "AR1440")
	require.NoError(t, err)
	assert.Contains(t, out, "Periodic maintenance: 3000 h")
	assert.Contains(t, out, "Internal cable:       -")
}

func TestTypesCmd(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)
	for _, typ := range maintenance.AllTypes {
		assert.Contains(t, out, string(typ))
	}
}
