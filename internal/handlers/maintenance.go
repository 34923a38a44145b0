package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ukydev/robot-fleet/internal/middleware"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/service"
)

// MaintenanceHandler serves the maintenance history.
type MaintenanceHandler struct {
	svc *service.MaintenanceService
}

// NewMaintenanceHandler creates a maintenance handler.
func NewMaintenanceHandler(svc *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// List returns history filtered by ?controller_id= and ?type=, newest first.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.List(r.Context(), q.Get("controller_id"), q.Get("type"))
	if err != nil {
		writeServiceError(w, r, err, "list maintenance")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Create logs a maintenance event.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaintenanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	createdBy := ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		createdBy = claims.Username
	}
	record, err := h.svc.Create(r.Context(), req, createdBy)
	if err != nil {
		writeServiceError(w, r, err, "create maintenance record")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Update edits the technician and notes of a record.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMaintenanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err, "update maintenance record")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete removes a record.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err, "delete maintenance record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
