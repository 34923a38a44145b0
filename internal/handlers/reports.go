package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ukydev/robot-fleet/internal/report"
)

// ReportHandler exports maintenance reports.
type ReportHandler struct {
	exporter *report.Exporter
}

// NewReportHandler creates a report handler.
func NewReportHandler(exporter *report.Exporter) *ReportHandler {
	return &ReportHandler{exporter: exporter}
}

// Export renders /api/reports/{type}?format=pdf|xlsx as an attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doc, err := h.exporter.Export(r.Context(), report.Request{
		Type:         mux.Vars(r)["type"],
		Format:       q.Get("format"),
		ControllerID: q.Get("controller_id"),
	})
	if err != nil {
		writeServiceError(w, r, err, "export report")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}
