package handlers

import (
	"net/http"

	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/telemetry"
)

// TelemetryHandler accepts telemetry over HTTP.
type TelemetryHandler struct {
	sink telemetry.Sink
}

// NewTelemetryHandler creates a telemetry handler.
func NewTelemetryHandler(sink telemetry.Sink) *TelemetryHandler {
	return &TelemetryHandler{sink: sink}
}

// Ingest stores one sample.
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var sample models.Telemetry
	if err := decodeJSON(w, r, &sample); err != nil {
		metrics.IncTelemetryIngest(metrics.SourceHTTP, metrics.ResultError)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sink.Ingest(r.Context(), &sample, metrics.SourceHTTP); err != nil {
		writeServiceError(w, r, err, "ingest telemetry")
		return
	}
	writeJSON(w, http.StatusAccepted, sample)
}
