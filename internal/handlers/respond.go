package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/report"
	"github.com/ukydev/robot-fleet/internal/service"
	"github.com/ukydev/robot-fleet/internal/telemetry"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, report.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, db.ErrInvalidID),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, telemetry.ErrInvalidSample),
		errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the mapped status. Internal errors are logged and masked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Errorf("Failed to %s", what)
		writeError(w, status, "Failed to "+what)
		return
	}
	writeError(w, status, err.Error())
}
