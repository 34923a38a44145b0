package maintenance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// newTestCalculator resolves every model to periodic 6000 / overhaul 36000 / no cable value.
func newTestCalculator(opts ...Option) *Calculator {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewCalculator(NewIntervalResolver(nil, DefaultPolicy), opts...)
}

func subject(hours int) Subject {
	return Subject{ID: "ctrl-1", Model: "YRC1000", RobotModel: "unknown", ServoPowerTime: hours}
}

func daysAgo(n int) time.Time {
	return fixedNow.AddDate(0, 0, -n)
}

func TestMaintenanceStatus_Scenarios(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name      string
		hours     int
		status    Status
		remaining int
	}{
		{"below warning threshold", 5000, StatusOK, 1000},
		{"inside warning band", 5500, StatusWarning, 500},
		{"exactly at warning threshold", 5400, StatusWarning, 600},
		{"exactly at target", 6000, StatusOverdue, 0},
		{"past target", 6200, StatusOverdue, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.MaintenanceStatus(subject(tt.hours), nil)[TypeGeneral]
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.remaining, got.Remaining)
			assert.Equal(t, tt.hours, got.HoursSinceLastMaintenance)
			assert.Equal(t, 6000, got.TargetHours)
			assert.InDelta(t, 5400.0, got.WarningThreshold(), 0.001)
		})
	}
}

func TestMaintenanceStatus_NoHistoryUsesFullServoTime(t *testing.T) {
	calc := newTestCalculator()
	statuses := calc.MaintenanceStatus(subject(1234), nil)

	require.Len(t, statuses, len(AllTypes))
	for _, typ := range AllTypes {
		r := statuses[typ]
		assert.Equal(t, 1234, r.HoursSinceLastMaintenance, typ)
		assert.Equal(t, 1234, r.CurrentHours, typ)
		assert.Nil(t, r.LastMaintenanceDate, typ)
		assert.Equal(t, typ, r.Name)
		assert.NotEmpty(t, r.Description)
	}
}

func TestMaintenanceStatus_YearRuleForcesOverdue(t *testing.T) {
	calc := newTestCalculator()
	history := []Record{
		{ControllerID: "ctrl-1", Type: TypeGeneral, Date: daysAgo(400), ServoHours: 4000},
	}

	got := calc.MaintenanceStatus(subject(4500), history)[TypeGeneral]

	assert.Equal(t, 500, got.HoursSinceLastMaintenance)
	assert.Equal(t, StatusOverdue, got.Status)
	assert.Equal(t, 0, got.Remaining)
	require.NotNil(t, got.LastMaintenanceDate)
	assert.True(t, got.LastMaintenanceDate.Equal(daysAgo(400)))
}

func TestMaintenanceStatus_YearRuleBoundary(t *testing.T) {
	calc := newTestCalculator()

	exactlyOneYear := []Record{{ControllerID: "ctrl-1", Type: TypeBattery, Date: fixedNow.AddDate(-1, 0, 0), ServoHours: 100}}
	got := calc.MaintenanceStatus(subject(200), exactlyOneYear)[TypeBattery]
	assert.Equal(t, StatusOK, got.Status)

	justOver := []Record{{ControllerID: "ctrl-1", Type: TypeBattery, Date: fixedNow.AddDate(-1, 0, 0).Add(-time.Minute), ServoHours: 100}}
	got = calc.MaintenanceStatus(subject(200), justOver)[TypeBattery]
	assert.Equal(t, StatusOverdue, got.Status)
	assert.Equal(t, 0, got.Remaining)
}

func TestMaintenanceStatus_YearRuleNotAppliedToTimingBelt(t *testing.T) {
	calc := newTestCalculator()
	history := []Record{{ControllerID: "ctrl-1", Type: TypeTimingBelt, Date: daysAgo(800), ServoHours: 1000}}

	got := calc.MaintenanceStatus(subject(2000), history)[TypeTimingBelt]

	assert.Equal(t, StatusOK, got.Status)
	assert.Equal(t, ReplacementInterval-1000, got.Remaining)
}

func TestMaintenanceStatus_ReplacementTargets(t *testing.T) {
	calc := newTestCalculator()

	t.Run("timing belt with prior record", func(t *testing.T) {
		history := []Record{{ControllerID: "ctrl-1", Type: TypeTimingBelt, Date: daysAgo(10), ServoHours: 3000}}
		got := calc.MaintenanceStatus(subject(9000), history)[TypeTimingBelt]
		assert.Equal(t, 24000, got.TargetHours)
		assert.Equal(t, 6000, got.HoursSinceLastMaintenance)
		assert.Equal(t, 18000, got.Remaining)
		assert.Equal(t, StatusOK, got.Status)
	})

	t.Run("timing belt without record", func(t *testing.T) {
		got := calc.MaintenanceStatus(subject(100), nil)[TypeTimingBelt]
		assert.Equal(t, 6000, got.TargetHours)
	})

	t.Run("battery with prior record", func(t *testing.T) {
		history := []Record{{ControllerID: "ctrl-1", Type: TypeBattery, Date: daysAgo(10), ServoHours: 0}}
		got := calc.MaintenanceStatus(subject(100), history)[TypeBattery]
		assert.Equal(t, 24000, got.TargetHours)
	})

	t.Run("flexible cable falls back through the chain", func(t *testing.T) {
		got := calc.MaintenanceStatus(subject(100), nil)[TypeFlexibleCable]
		assert.Equal(t, 6000, got.TargetHours)

		history := []Record{{ControllerID: "ctrl-1", Type: TypeFlexibleCable, Date: daysAgo(10), ServoHours: 0}}
		got = calc.MaintenanceStatus(subject(100), history)[TypeFlexibleCable]
		assert.Equal(t, 24000, got.TargetHours)
	})

	t.Run("flexible cable uses robot cable interval", func(t *testing.T) {
		resolver := NewIntervalResolver([]ModelInterval{
			{Family: "AR", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 36000, InternalCable: hours(12000)}},
		}, DefaultPolicy)
		c := NewCalculator(resolver, WithClock(func() time.Time { return fixedNow }))
		s := Subject{ID: "ctrl-1", RobotModel: "AR1440", ServoPowerTime: 100}

		got := c.MaintenanceStatus(s, nil)[TypeFlexibleCable]
		assert.Equal(t, 12000, got.TargetHours)

		history := []Record{{ControllerID: "ctrl-1", Type: TypeFlexibleCable, Date: daysAgo(10), ServoHours: 0}}
		got = c.MaintenanceStatus(s, history)[TypeFlexibleCable]
		assert.Equal(t, 12000, got.TargetHours)
	})
}

func TestMaintenanceStatus_Overhaul(t *testing.T) {
	calc := newTestCalculator()

	got := calc.MaintenanceStatus(subject(33000), nil)[TypeOverhaulParts]
	assert.Equal(t, 36000, got.TargetHours)
	assert.Equal(t, StatusWarning, got.Status)

	// After a first overhaul the calendar limit no longer applies to overhaul types.
	history := []Record{
		{ControllerID: "ctrl-1", Type: TypeOverhaulMaintenance, Date: daysAgo(500), ServoHours: 30000},
	}
	statuses := calc.MaintenanceStatus(subject(31000), history)
	assert.Equal(t, StatusOK, statuses[TypeOverhaulMaintenance].Status)
	assert.Equal(t, 35000, statuses[TypeOverhaulMaintenance].Remaining)
	assert.Equal(t, StatusOK, statuses[TypeOverhaulBelt].Status)
	assert.Equal(t, 5000, statuses[TypeOverhaulBelt].Remaining)
}

// The overhaul year rule needs a last date, which only an overhaul record can
// supply, and any overhaul record switches the rule off. It never fires.
func TestMaintenanceStatus_OverhaulYearRuleNeverFires(t *testing.T) {
	calc := newTestCalculator()

	for _, typ := range AllTypes {
		if !IsOverhaulVariant(typ) {
			continue
		}
		t.Run(string(typ), func(t *testing.T) {
			history := []Record{{ControllerID: "ctrl-1", Type: typ, Date: daysAgo(1100), ServoHours: 100}}
			got := calc.MaintenanceStatus(subject(1000), history)[typ]
			assert.Equal(t, StatusOK, got.Status)
			assert.Equal(t, 35100, got.Remaining)
			require.NotNil(t, got.LastMaintenanceDate)
		})
	}

	for typ, got := range calc.MaintenanceStatus(subject(1000), nil) {
		if IsOverhaulVariant(typ) {
			assert.Nil(t, got.LastMaintenanceDate, typ)
			assert.Equal(t, StatusOK, got.Status, typ)
		}
	}
}

func TestMaintenanceStatus_IgnoresOtherControllers(t *testing.T) {
	calc := newTestCalculator()
	history := []Record{
		{ControllerID: "ctrl-2", Type: TypeGeneral, Date: daysAgo(1), ServoHours: 5900},
		{ControllerID: "ctrl-2", Type: TypeOverhaulBelt, Date: daysAgo(1), ServoHours: 5900},
	}

	got := calc.MaintenanceStatus(subject(5950), history)[TypeGeneral]
	assert.Equal(t, StatusWarning, got.Status)
	assert.Equal(t, 5950, got.HoursSinceLastMaintenance)
}

func TestMaintenanceStatus_UsesMostRecentRecord(t *testing.T) {
	calc := newTestCalculator()
	history := []Record{
		{ControllerID: "ctrl-1", Type: TypeGeneral, Date: daysAgo(300), ServoHours: 1000},
		{ControllerID: "ctrl-1", Type: TypeGeneral, Date: daysAgo(20), ServoHours: 5000},
		{ControllerID: "ctrl-1", Type: TypeGeneral, Date: daysAgo(150), ServoHours: 3000},
	}

	got := calc.MaintenanceStatus(subject(5200), history)[TypeGeneral]
	assert.Equal(t, 200, got.HoursSinceLastMaintenance)
	assert.Equal(t, 5800, got.Remaining)
	assert.Equal(t, StatusOK, got.Status)
}

func TestMaintenanceStatus_Invariants(t *testing.T) {
	calc := newTestCalculator()
	history := []Record{
		{ControllerID: "ctrl-1", Type: TypeGeneral, Date: daysAgo(30), ServoHours: 2000},
		{ControllerID: "ctrl-1", Type: TypeBattery, Date: daysAgo(700), ServoHours: 500},
		{ControllerID: "ctrl-1", Type: TypeTimingBelt, Date: daysAgo(90), ServoHours: 8000},
	}

	for hours := 0; hours <= 60000; hours += 750 {
		statuses := calc.MaintenanceStatus(subject(hours), history)
		for _, r := range statuses {
			assert.GreaterOrEqual(t, r.Remaining, 0)
			if r.HoursSinceLastMaintenance >= r.TargetHours {
				assert.Equal(t, StatusOverdue, r.Status, "%s at %d", r.Name, hours)
				assert.Equal(t, 0, r.Remaining)
			}
		}
		again := calc.MaintenanceStatus(subject(hours), history)
		assert.Equal(t, statuses, again)
	}
}

func TestLatestByDate(t *testing.T) {
	_, ok := LatestByDate(nil)
	assert.False(t, ok)

	records := []Record{
		{Type: TypeGeneral, Date: daysAgo(5), ServoHours: 10},
		{Type: TypeGeneral, Date: daysAgo(1), ServoHours: 20},
		{Type: TypeGeneral, Date: daysAgo(1), ServoHours: 30},
		{Type: TypeGeneral, Date: daysAgo(9), ServoHours: 40},
	}
	latest, ok := LatestByDate(records)
	require.True(t, ok)
	assert.Equal(t, 30, latest.ServoHours)
	// input order is untouched
	assert.Equal(t, 10, records[0].ServoHours)
}

func TestResult_PercentageAndNextDue(t *testing.T) {
	r := Result{TargetHours: 6000, Remaining: 1500}
	assert.InDelta(t, 75.0, r.Percentage(), 0.0001)

	due := r.NextDue(fixedNow, 16)
	require.NotNil(t, due)
	assert.True(t, due.Sub(fixedNow) > 93*24*time.Hour)
	assert.True(t, due.Sub(fixedNow) < 94*24*time.Hour)

	assert.Nil(t, r.NextDue(fixedNow, 0))

	overdue := Result{TargetHours: 6000, Remaining: 0}
	assert.Equal(t, fixedNow, *overdue.NextDue(fixedNow, 0))
	assert.InDelta(t, 100.0, overdue.Percentage(), 0.0001)
}

func TestStatuses_WorstAndOrdered(t *testing.T) {
	calc := newTestCalculator()
	statuses := calc.MaintenanceStatus(subject(5500), nil)

	assert.Equal(t, StatusWarning, statuses.Worst())
	ordered := statuses.Ordered()
	require.Len(t, ordered, len(AllTypes))
	for i, typ := range AllTypes {
		assert.Equal(t, typ, ordered[i].Name)
	}
}

func TestResult_JSONUsesStatusLabel(t *testing.T) {
	data, err := json.Marshal(Result{Name: TypeBattery, Status: StatusOverdue})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"OVERDUE"`)
	assert.Contains(t, string(data), `"name":"Battery"`)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StatusOverdue, back.Status)
}
