package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ukydev/robot-fleet/internal/auth"
	"github.com/ukydev/robot-fleet/internal/config"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/middleware"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/report"
	"github.com/ukydev/robot-fleet/internal/service"
	"github.com/ukydev/robot-fleet/internal/telemetry"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth        *auth.Service
	Users       db.UserCollection
	Controllers db.ControllerCollection
	Status      *service.StatusService
	Maintenance *service.MaintenanceService
	Telemetry   *telemetry.Ingestor
	Reports     *report.Exporter
	Defaults    config.Defaults
	RateLimit   *middleware.RateLimitMiddleware
	Ping        func(ctx context.Context) error
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) *mux.Router {
	authMW := middleware.NewAuthMiddleware(d.Auth)
	protect := func(p models.Permission, h http.HandlerFunc) http.Handler {
		return authMW.RequirePermission(p)(h)
	}

	authHandler := NewAuthHandler(d.Auth, d.Users)
	controllers := NewControllerHandler(d.Controllers, d.Status, d.Telemetry, d.Defaults)
	maint := NewMaintenanceHandler(d.Maintenance)
	tele := NewTelemetryHandler(d.Telemetry)
	reports := NewReportHandler(d.Reports)
	settings := NewSettingsHandler(d.Defaults, d.Status.Calculator().Resolver())
	health := NewHealthHandler(d.Ping)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	if d.RateLimit != nil {
		r.Use(d.RateLimit.RateLimit)
	}
	r.Use(authMW.Authenticate)

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", authHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/auth/password", authHandler.ChangePassword).Methods(http.MethodPost)

	api.Handle("/users", protect(models.PermManageUsers, authHandler.ListUsers)).Methods(http.MethodGet)
	api.Handle("/users/{id}", protect(models.PermManageUsers, authHandler.UpdateUserRole)).Methods(http.MethodPut)
	api.Handle("/users/{id}", protect(models.PermDeleteUser, authHandler.DeleteUser)).Methods(http.MethodDelete)

	api.Handle("/controllers", protect(models.PermViewControllers, controllers.List)).Methods(http.MethodGet)
	api.Handle("/controllers", protect(models.PermManageControllers, controllers.Create)).Methods(http.MethodPost)
	api.Handle("/controllers/{id}", protect(models.PermViewControllers, controllers.Get)).Methods(http.MethodGet)
	api.Handle("/controllers/{id}", protect(models.PermManageControllers, controllers.Update)).Methods(http.MethodPut)
	api.Handle("/controllers/{id}", protect(models.PermManageControllers, controllers.Delete)).Methods(http.MethodDelete)
	api.Handle("/controllers/{id}/maintenance-status", protect(models.PermViewMaintenance, controllers.MaintenanceStatus)).Methods(http.MethodGet)
	api.Handle("/controllers/{id}/telemetry", protect(models.PermViewTelemetry, controllers.Telemetry)).Methods(http.MethodGet)
	api.Handle("/fleet/status", protect(models.PermViewMaintenance, controllers.FleetStatus)).Methods(http.MethodGet)

	api.Handle("/maintenance", protect(models.PermViewMaintenance, maint.List)).Methods(http.MethodGet)
	api.Handle("/maintenance", protect(models.PermCreateMaintenance, maint.Create)).Methods(http.MethodPost)
	api.Handle("/maintenance/{id}", protect(models.PermUpdateMaintenance, maint.Update)).Methods(http.MethodPut)
	api.Handle("/maintenance/{id}", protect(models.PermDeleteMaintenance, maint.Delete)).Methods(http.MethodDelete)

	api.Handle("/telemetry", protect(models.PermIngestTelemetry, tele.Ingest)).Methods(http.MethodPost)

	api.Handle("/reports/{type}", protect(models.PermExportReports, reports.Export)).Methods(http.MethodGet)

	api.Handle("/settings/defaults", protect(models.PermViewControllers, settings.Defaults)).Methods(http.MethodGet)
	api.Handle("/intervals", protect(models.PermViewControllers, settings.Intervals)).Methods(http.MethodGet)

	return r
}
