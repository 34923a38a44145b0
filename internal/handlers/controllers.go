package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/config"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/service"
	"github.com/ukydev/robot-fleet/internal/telemetry"
)

// controllerRequest is the writable part of a controller.
type controllerRequest struct {
	Name                string     `json:"name"`
	SerialNumber        string     `json:"serial_number"`
	Model               string     `json:"model"`
	RobotModel          string     `json:"robot_model"`
	Category            string     `json:"category"`
	Location            string     `json:"location"`
	ServoPowerTime      int        `json:"servo_power_time"`
	DailyOperatingHours float64    `json:"daily_operating_hours"`
	InstalledAt         *time.Time `json:"installed_at,omitempty"`
}

func (req controllerRequest) validate(defaults config.Defaults) string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case strings.TrimSpace(req.Model) == "" && strings.TrimSpace(req.RobotModel) == "":
		return "model or robot_model is required"
	case !defaults.HasCategory(req.Category):
		return "category must be one of: " + strings.Join(defaults.ControllerCategories, ", ")
	case req.ServoPowerTime < 0:
		return "servo_power_time must not be negative"
	case req.DailyOperatingHours < 0 || req.DailyOperatingHours > 24:
		return "daily_operating_hours must be between 0 and 24"
	}
	return ""
}

func (req controllerRequest) controller(defaults config.Defaults) models.Controller {
	category := req.Category
	for _, c := range defaults.ControllerCategories {
		if strings.EqualFold(c, req.Category) {
			category = c
			break
		}
	}
	return models.Controller{
		Name:                strings.TrimSpace(req.Name),
		SerialNumber:        strings.TrimSpace(req.SerialNumber),
		Model:               strings.TrimSpace(req.Model),
		RobotModel:          strings.TrimSpace(req.RobotModel),
		Category:            category,
		Location:            strings.TrimSpace(req.Location),
		ServoPowerTime:      req.ServoPowerTime,
		DailyOperatingHours: req.DailyOperatingHours,
		InstalledAt:         req.InstalledAt,
	}
}

// ControllerHandler serves controller CRUD, status and telemetry history.
type ControllerHandler struct {
	controllers db.ControllerCollection
	status      *service.StatusService
	ingestor    *telemetry.Ingestor
	defaults    config.Defaults
}

// NewControllerHandler creates a controller handler.
func NewControllerHandler(controllers db.ControllerCollection, status *service.StatusService, ingestor *telemetry.Ingestor, defaults config.Defaults) *ControllerHandler {
	return &ControllerHandler{
		controllers: controllers,
		status:      status,
		ingestor:    ingestor,
		defaults:    defaults,
	}
}

func controllerFilter(r *http.Request) db.ControllerFilter {
	q := r.URL.Query()
	return db.ControllerFilter{
		Category:   q.Get("category"),
		Location:   q.Get("location"),
		RobotModel: q.Get("robot_model"),
	}
}

// List returns controllers, filtered by ?category=, ?location= and ?robot_model=.
func (h *ControllerHandler) List(w http.ResponseWriter, r *http.Request) {
	controllers, err := h.controllers.FindControllers(r.Context(), controllerFilter(r))
	if err != nil {
		writeServiceError(w, r, err, "list controllers")
		return
	}
	writeJSON(w, http.StatusOK, controllers)
}

// Create registers a controller.
func (h *ControllerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req controllerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(h.defaults); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	controller := req.controller(h.defaults)
	if err := h.controllers.InsertController(r.Context(), &controller); err != nil {
		writeServiceError(w, r, err, "create controller")
		return
	}
	log.WithFields(log.Fields{
		"controller_id": controller.ID.Hex(),
		"model":         controller.Model,
		"robot_model":   controller.RobotModel,
	}).Info("Controller created")
	writeJSON(w, http.StatusCreated, controller)
}

// Get returns one controller.
func (h *ControllerHandler) Get(w http.ResponseWriter, r *http.Request) {
	controller, err := h.controllers.FindControllerByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "load controller")
		return
	}
	writeJSON(w, http.StatusOK, controller)
}

// Update replaces the descriptive fields of a controller. Servo hours never decrease.
func (h *ControllerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req controllerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(h.defaults); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.controllers.UpdateController(r.Context(), id, req.controller(h.defaults)); err != nil {
		writeServiceError(w, r, err, "update controller")
		return
	}
	controller, err := h.controllers.FindControllerByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "load controller")
		return
	}
	writeJSON(w, http.StatusOK, controller)
}

// Delete removes a controller.
func (h *ControllerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.controllers.DeleteController(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete controller")
		return
	}
	log.WithField("controller_id", id).Info("Controller deleted")
	w.WriteHeader(http.StatusNoContent)
}

// MaintenanceStatus returns the per type maintenance status of one controller.
func (h *ControllerHandler) MaintenanceStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.ControllerStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "compute maintenance status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// FleetStatus returns the fleet overview. ?due=true keeps only controllers that need attention.
func (h *ControllerHandler) FleetStatus(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.status.FleetStatus(r.Context(), controllerFilter(r))
	if err != nil {
		writeServiceError(w, r, err, "compute fleet status")
		return
	}
	if due, _ := strconv.ParseBool(r.URL.Query().Get("due")); due {
		kept := fleet.Controllers[:0]
		for _, cs := range fleet.Controllers {
			if len(cs.Due()) > 0 {
				kept = append(kept, cs)
			}
		}
		fleet.Controllers = kept
	}
	writeJSON(w, http.StatusOK, fleet)
}

// Telemetry returns recent samples, ?alarms=true for alarms only and ?limit=N.
func (h *ControllerHandler) Telemetry(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	alarmsOnly, _ := strconv.ParseBool(q.Get("alarms"))
	var limit int64
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	samples, err := h.ingestor.Recent(r.Context(), mux.Vars(r)["id"], alarmsOnly, limit)
	if err != nil {
		writeServiceError(w, r, err, "list telemetry")
		return
	}
	writeJSON(w, http.StatusOK, samples)
}
