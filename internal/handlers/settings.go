package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/config"
	"github.com/ukydev/robot-fleet/internal/maintenance"
)

// SettingsHandler exposes configured defaults and the interval table.
type SettingsHandler struct {
	defaults config.Defaults
	resolver *maintenance.IntervalResolver
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(defaults config.Defaults, resolver *maintenance.IntervalResolver) *SettingsHandler {
	return &SettingsHandler{defaults: defaults, resolver: resolver}
}

// Defaults returns the fallback lists used by the dashboard.
func (h *SettingsHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.defaults)
}

type intervalResponse struct {
	RobotModel      string             `json:"robot_model"`
	ControllerModel string             `json:"controller_model"`
	Policy          maintenance.Policy `json:"policy"`
	Types           []typeInfo         `json:"types"`
}

type typeInfo struct {
	Name        maintenance.Type `json:"name"`
	Description string           `json:"description"`
}

// Intervals resolves ?robot_model= and ?controller_model= to a maintenance policy.
func (h *SettingsHandler) Intervals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := intervalResponse{
		RobotModel:      q.Get("robot_model"),
		ControllerModel: q.Get("controller_model"),
	}
	resp.Policy = h.resolver.Resolve(resp.RobotModel, resp.ControllerModel)
	for _, t := range maintenance.AllTypes {
		resp.Types = append(resp.Types, typeInfo{Name: t, Description: t.Description()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthHandler reports liveness and, when a pinger is set, storage reachability.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping may be nil.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Health returns 200 when healthy and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
