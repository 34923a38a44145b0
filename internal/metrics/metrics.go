package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "robot_fleet_"

	ResultSuccess = "success"
	ResultError   = "error"

	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	statusEvaluations *prometheus.CounterVec

	telemetryIngest *prometheus.CounterVec

	reportExports       *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers the service metrics with the default registry. It is safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)
		statusEvaluations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "maintenance_status_total",
				Help: "Maintenance status evaluations by maintenance type and resulting status",
			},
			[]string{"type", "status"},
		)
		telemetryIngest = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "telemetry_ingest_total",
				Help: "Telemetry samples ingested by source and result",
			},
			[]string{"source", "result"},
		)
		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Report exports by report type, format and result",
			},
			[]string{"report", "format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			statusEvaluations,
			telemetryIngest,
			reportExports,
			reportExportLatency,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, code int, duration time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// IncStatusEvaluation counts one computed maintenance status.
func IncStatusEvaluation(maintenanceType, status string) {
	if statusEvaluations == nil {
		return
	}
	statusEvaluations.WithLabelValues(maintenanceType, status).Inc()
}

// IncTelemetryIngest counts one ingested (or rejected) telemetry sample.
func IncTelemetryIngest(source, result string) {
	if telemetryIngest == nil {
		return
	}
	telemetryIngest.WithLabelValues(source, result).Inc()
}

// ObserveReportExport records one report export.
func ObserveReportExport(report, format, result string, duration time.Duration) {
	if reportExports == nil {
		return
	}
	reportExports.WithLabelValues(report, format, result).Inc()
	reportExportLatency.WithLabelValues(format).Observe(duration.Seconds())
}
