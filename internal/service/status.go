package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/models"
)

// ItemStatus is one maintenance type as shown on the dashboard.
type ItemStatus struct {
	maintenance.Result
	Percentage float64    `json:"percentage"`
	NextDue    *time.Time `json:"next_due,omitempty"`
}

// ControllerStatus is the full maintenance picture of one controller.
type ControllerStatus struct {
	Controller  models.Controller  `json:"controller"`
	Overall     maintenance.Status `json:"overall_status"`
	Policy      maintenance.Policy `json:"policy"`
	Items       []ItemStatus       `json:"items"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
	statuses    maintenance.Statuses
}

// Statuses returns the raw calculator output behind s.
func (s ControllerStatus) Statuses() maintenance.Statuses {
	return s.statuses
}

// Due returns the items that are not OK.
func (s ControllerStatus) Due() []ItemStatus {
	var due []ItemStatus
	for _, item := range s.Items {
		if item.Status != maintenance.StatusOK {
			due = append(due, item)
		}
	}
	return due
}

// FleetSummary counts controllers by their worst status.
type FleetSummary struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Overdue int `json:"overdue"`
}

// FleetStatus is the dashboard overview, most urgent controllers first.
type FleetStatus struct {
	Summary     FleetSummary       `json:"summary"`
	Controllers []ControllerStatus `json:"controllers"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}

// StatusService joins stored controllers and history with the calculator.
type StatusService struct {
	controllers db.ControllerCollection
	history     db.MaintenanceCollection
	calc        *maintenance.Calculator
	dailyHours  float64
}

// NewStatusService creates a status service. dailyHours is the servo hours per day
// assumed for controllers without their own figure.
func NewStatusService(
	controllers db.ControllerCollection,
	history db.MaintenanceCollection,
	calc *maintenance.Calculator,
	dailyHours float64,
) *StatusService {
	if calc == nil {
		calc = maintenance.NewCalculator(nil)
	}
	return &StatusService{
		controllers: controllers,
		history:     history,
		calc:        calc,
		dailyHours:  dailyHours,
	}
}

// Calculator returns the calculator used by s.
func (s *StatusService) Calculator() *maintenance.Calculator {
	return s.calc
}

// ControllerStatus evaluates a single controller.
func (s *StatusService) ControllerStatus(ctx context.Context, id string) (*ControllerStatus, error) {
	controller, err := s.controllers.FindControllerByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading controller: %w", err)
	}
	history, err := s.history.FindMaintenance(ctx, models.MaintenanceFilter{ControllerID: controller.ID.Hex()})
	if err != nil {
		return nil, fmt.Errorf("loading maintenance history: %w", err)
	}
	status := s.Evaluate(*controller, history)
	return &status, nil
}

// FleetStatus evaluates every controller matching filter.
func (s *StatusService) FleetStatus(ctx context.Context, filter db.ControllerFilter) (*FleetStatus, error) {
	controllers, err := s.controllers.FindControllers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading controllers: %w", err)
	}
	history, err := s.history.FindMaintenance(ctx, models.MaintenanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading maintenance history: %w", err)
	}

	byController := make(map[string][]models.MaintenanceRecord)
	for _, rec := range history {
		byController[rec.ControllerID] = append(byController[rec.ControllerID], rec)
	}

	fleet := &FleetStatus{
		Controllers: make([]ControllerStatus, 0, len(controllers)),
		EvaluatedAt: s.calc.Now(),
	}
	for _, c := range controllers {
		status := s.Evaluate(c, byController[c.ID.Hex()])
		fleet.Controllers = append(fleet.Controllers, status)

		fleet.Summary.Total++
		switch status.Overall {
		case maintenance.StatusOverdue:
			fleet.Summary.Overdue++
		case maintenance.StatusWarning:
			fleet.Summary.Warning++
		default:
			fleet.Summary.OK++
		}
	}

	sort.SliceStable(fleet.Controllers, func(i, j int) bool {
		a, b := fleet.Controllers[i], fleet.Controllers[j]
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		return a.Controller.Name < b.Controller.Name
	})
	return fleet, nil
}

// Evaluate runs the calculator for controller against history without touching storage.
func (s *StatusService) Evaluate(controller models.Controller, history []models.MaintenanceRecord) ControllerStatus {
	now := s.calc.Now()
	statuses := s.calc.MaintenanceStatus(controller.Subject(), models.Records(history))

	daily := controller.DailyOperatingHours
	if daily <= 0 {
		daily = s.dailyHours
	}

	items := make([]ItemStatus, 0, len(statuses))
	for _, r := range statuses.Ordered() {
		metrics.IncStatusEvaluation(string(r.Name), r.Status.String())
		items = append(items, ItemStatus{
			Result:     r,
			Percentage: r.Percentage(),
			NextDue:    r.NextDue(now, daily),
		})
	}

	return ControllerStatus{
		Controller:  controller,
		Overall:     statuses.Worst(),
		Policy:      s.calc.Resolver().Resolve(controller.RobotModel, controller.Model),
		Items:       items,
		EvaluatedAt: now,
		statuses:    statuses,
	}
}
