package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/config"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/service"
)

var (
	// ErrUnknownReport is returned for report types that are not configured or not supported.
	ErrUnknownReport = errors.New("unknown report type")
	// ErrUnknownFormat is returned for formats that are not configured or not supported.
	ErrUnknownFormat = errors.New("unknown report format")
)

// Request selects a report.
type Request struct {
	Type         string
	Format       string
	ControllerID string // optional, history reports only
}

// Document is a rendered report.
type Document struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Exporter loads report data and renders it.
type Exporter struct {
	status      *service.StatusService
	controllers db.ControllerCollection
	history     db.MaintenanceCollection
	defaults    config.Defaults
}

// NewExporter creates an exporter limited to the report types and formats in defaults.
func NewExporter(status *service.StatusService, controllers db.ControllerCollection, history db.MaintenanceCollection, defaults config.Defaults) *Exporter {
	return &Exporter{
		status:      status,
		controllers: controllers,
		history:     history,
		defaults:    defaults,
	}
}

// Export renders the requested report.
func (e *Exporter) Export(ctx context.Context, req Request) (*Document, error) {
	reportType := strings.ToLower(strings.TrimSpace(req.Type))
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatPDF
	}
	if !e.defaults.HasReportType(reportType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Type)
	}
	if !e.defaults.HasReportFormat(format) || (format != FormatPDF && format != FormatXLSX) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}

	start := time.Now()
	content, err := e.render(ctx, reportType, format, req.ControllerID)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveReportExport(reportType, format, result, time.Since(start))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"report": reportType,
		"format": format,
		"bytes":  len(content),
	}).Info("Report exported")

	return &Document{
		Content:     content,
		ContentType: ContentType(format),
		Filename:    fmt.Sprintf("%s-%s.%s", reportType, start.UTC().Format("20060102"), format),
	}, nil
}

func (e *Exporter) render(ctx context.Context, reportType, format, controllerID string) ([]byte, error) {
	switch reportType {
	case TypeMaintenanceStatus:
		fleet, err := e.status.FleetStatus(ctx, db.ControllerFilter{})
		if err != nil {
			return nil, err
		}
		if format == FormatXLSX {
			return BuildStatusXLSX(fleet)
		}
		return BuildStatusPDF(fleet)

	case TypeMaintenanceHistory:
		history, err := e.history.FindMaintenance(ctx, models.MaintenanceFilter{ControllerID: controllerID})
		if err != nil {
			return nil, fmt.Errorf("loading maintenance history: %w", err)
		}
		controllers, err := e.controllers.FindControllers(ctx, db.ControllerFilter{})
		if err != nil {
			return nil, fmt.Errorf("loading controllers: %w", err)
		}
		names := make(map[string]string, len(controllers))
		for _, c := range controllers {
			names[c.ID.Hex()] = c.Name
		}
		generated := e.status.Calculator().Now()
		if format == FormatXLSX {
			return BuildHistoryXLSX(history, names, generated)
		}
		return BuildHistoryPDF(history, names, generated)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, reportType)
	}
}
