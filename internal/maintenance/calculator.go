package maintenance

import (
	"math"
	"time"
)

const (
	// ReplacementInterval is the target for Timing Belt, Battery and Flexible Cable
	// once a first replacement has been logged.
	ReplacementInterval = 24000

	// WarningRatio is the share of the target at which a type starts to warn.
	WarningRatio = 0.9
)

// Subject is the maintenance relevant state of one controller.
type Subject struct {
	ID             string
	Model          string
	RobotModel     string
	ServoPowerTime int
}

// Record is one logged maintenance event.
type Record struct {
	ControllerID string
	Type         Type
	Date         time.Time
	ServoHours   int
}

// Result is the computed state of one maintenance type on one controller.
type Result struct {
	Name                      Type       `json:"name"`
	Description               string     `json:"description"`
	Status                    Status     `json:"status"`
	Remaining                 int        `json:"remaining"`
	TargetHours               int        `json:"target_hours"`
	CurrentHours              int        `json:"current_hours"`
	HoursSinceLastMaintenance int        `json:"hours_since_last_maintenance"`
	LastMaintenanceDate       *time.Time `json:"last_maintenance_date,omitempty"`
}

// Percentage is the consumed share of the interval, for progress bars.
func (r Result) Percentage() float64 {
	if r.TargetHours <= 0 {
		return 100
	}
	return float64(r.TargetHours-r.Remaining) / float64(r.TargetHours) * 100
}

// WarningThreshold returns the hour count at which r starts to warn.
func (r Result) WarningThreshold() float64 {
	return float64(r.TargetHours) * WarningRatio
}

// NextDue estimates the calendar date the type falls due when the robot runs
// dailyHours servo hours per day. It returns nil when no estimate is possible.
func (r Result) NextDue(now time.Time, dailyHours float64) *time.Time {
	if r.Remaining <= 0 {
		due := now
		return &due
	}
	if dailyHours <= 0 || math.IsNaN(dailyHours) || math.IsInf(dailyHours, 0) {
		return nil
	}
	days := float64(r.Remaining) / dailyHours
	due := now.Add(time.Duration(days * float64(24*time.Hour)))
	return &due
}

// Statuses maps each maintenance type to its result.
type Statuses map[Type]Result

// Worst returns the most severe status across all types.
func (s Statuses) Worst() Status {
	worst := StatusOK
	for _, r := range s {
		worst = Worst(worst, r.Status)
	}
	return worst
}

// Ordered returns the results in AllTypes order.
func (s Statuses) Ordered() []Result {
	out := make([]Result, 0, len(s))
	for _, t := range AllTypes {
		if r, ok := s[t]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Calculator computes maintenance status from servo hours and history.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	resolver *IntervalResolver
	now      func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source used by the one year rule.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// NewCalculator returns a calculator resolving intervals through resolver.
// A nil resolver uses the built-in table.
func NewCalculator(resolver *IntervalResolver, opts ...Option) *Calculator {
	if resolver == nil {
		resolver = NewDefaultIntervalResolver()
	}
	c := &Calculator{resolver: resolver, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolver returns the interval resolver backing c.
func (c *Calculator) Resolver() *IntervalResolver {
	return c.resolver
}

// Now returns the calculator's current time.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// MaintenanceStatus computes the status of every maintenance type for subject.
// Records belonging to other controllers are ignored.
func (c *Calculator) MaintenanceStatus(subject Subject, history []Record) Statuses {
	policy := c.resolver.Resolve(subject.RobotModel, subject.Model)
	now := c.now()

	own := make([]Record, 0, len(history))
	hasOverhaul := false
	for _, rec := range history {
		if rec.ControllerID != subject.ID {
			continue
		}
		own = append(own, rec)
		if IsOverhaulVariant(rec.Type) {
			hasOverhaul = true
		}
	}

	out := make(Statuses, len(AllTypes))
	for _, t := range AllTypes {
		records := OfType(own, t)
		target := targetHours(t, policy, len(records) > 0)
		yearRule := appliesYearRule(t, hasOverhaul)
		out[t] = evaluate(t, subject.ServoPowerTime, records, target, yearRule, now)
	}
	return out
}

func evaluate(t Type, current int, records []Record, target int, yearRule bool, now time.Time) Result {
	lastHours := 0
	var lastDate *time.Time
	if last, ok := LatestByDate(records); ok {
		lastHours = last.ServoHours
		if !last.Date.IsZero() {
			d := last.Date
			lastDate = &d
		}
	}

	since := current - lastHours
	remaining := target - since
	if remaining < 0 {
		remaining = 0
	}

	status := StatusOK
	if float64(since) >= float64(target)*WarningRatio {
		status = StatusWarning
	}
	if since >= target {
		status = StatusOverdue
		remaining = 0
	}

	if yearRule && lastDate != nil && lastDate.AddDate(1, 0, 0).Before(now) {
		status = StatusOverdue
		remaining = 0
	}

	return Result{
		Name:                      t,
		Description:               t.Description(),
		Status:                    status,
		Remaining:                 remaining,
		TargetHours:               target,
		CurrentHours:              current,
		HoursSinceLastMaintenance: since,
		LastMaintenanceDate:       lastDate,
	}
}

func targetHours(t Type, p Policy, hasPrior bool) int {
	switch t {
	case TypeGeneral:
		return p.PeriodicMaintenance
	case TypeTimingBelt, TypeBattery:
		if hasPrior {
			return ReplacementInterval
		}
		return p.PeriodicMaintenance
	case TypeFlexibleCable:
		if p.HasInternalCable() {
			return *p.InternalCable
		}
		if hasPrior {
			return ReplacementInterval
		}
		return p.PeriodicMaintenance
	default:
		if IsOverhaulVariant(t) {
			return p.Overhaul
		}
		return p.PeriodicMaintenance
	}
}

// appliesYearRule reports whether the one year calendar limit is enforced for t.
// Overhaul types only enforce it until the controller has any overhaul on record.
func appliesYearRule(t Type, hasOverhaul bool) bool {
	switch t {
	case TypeGeneral, TypeBattery, TypeFlexibleCable:
		return true
	}
	return IsOverhaulVariant(t) && !hasOverhaul
}

// OfType returns the records whose type equals t.
func OfType(records []Record, t Type) []Record {
	var out []Record
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// LatestByDate returns the most recent record. Ties on date go to the record
// with the higher servo hours, then to the earlier position. It reports false
// for an empty slice.
func LatestByDate(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	latest := records[0]
	for _, r := range records[1:] {
		if r.Date.After(latest.Date) || (r.Date.Equal(latest.Date) && r.ServoHours > latest.ServoHours) {
			latest = r
		}
	}
	return latest, true
}
