package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/auth"
	"github.com/ukydev/robot-fleet/internal/config"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/handlers"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/middleware"
	"github.com/ukydev/robot-fleet/internal/report"
	"github.com/ukydev/robot-fleet/internal/service"
	"github.com/ukydev/robot-fleet/internal/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	metrics.Init()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	resolver, err := loadResolver(cfg.IntervalTablePath)
	if err != nil {
		return err
	}

	deps, err := buildDeps(cfg, database, resolver)
	if err != nil {
		return err
	}
	deps.Ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	if cfg.MQTTBroker != "" {
		sub, err := telemetry.NewSubscriber(mqttOptions(cfg), deps.Telemetry)
		if err != nil {
			return err
		}
		if err := sub.Start(ctx); err != nil {
			return fmt.Errorf("start MQTT subscriber: %w", err)
		}
		defer sub.Stop()
	}

	srv := newHTTPServer(":"+cfg.Port, handlers.NewRouter(deps))
	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildDeps wires the Mongo collections into the services the router needs.
func buildDeps(cfg config.Config, database *mongo.Database, resolver *maintenance.IntervalResolver) (handlers.Deps, error) {
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return handlers.Deps{}, err
	}

	controllers := &db.MongoControllerCollection{Collection: database.Collection(db.CollControllers)}
	history := &db.MongoMaintenanceCollection{Collection: database.Collection(db.CollMaintenance)}
	samples := &db.MongoTelemetryCollection{Collection: database.Collection(db.CollTelemetry)}
	users := &db.MongoUserCollection{Collection: database.Collection(db.CollUsers)}

	status := service.NewStatusService(controllers, history, maintenance.NewCalculator(resolver), cfg.DailyServoHours)

	deps := handlers.Deps{
		Auth:        authService,
		Users:       users,
		Controllers: controllers,
		Status:      status,
		Maintenance: service.NewMaintenanceService(controllers, history),
		Telemetry:   telemetry.NewIngestor(controllers, samples),
		Reports:     report.NewExporter(status, controllers, history, cfg.Defaults),
		Defaults:    cfg.Defaults,
	}
	if cfg.RateLimitRPS > 0 {
		deps.RateLimit = middleware.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return deps, nil
}

// loadResolver returns the built-in interval table unless path names an override file.
func loadResolver(path string) (*maintenance.IntervalResolver, error) {
	if path == "" {
		return maintenance.NewDefaultIntervalResolver(), nil
	}
	resolver, err := maintenance.LoadIntervalResolver(path)
	if err != nil {
		return nil, fmt.Errorf("load interval table: %w", err)
	}
	log.WithField("path", path).Info("Loaded interval table")
	return resolver, nil
}

func mqttOptions(cfg config.Config) telemetry.MQTTOptions {
	return telemetry.MQTTOptions{
		Broker:   cfg.MQTTBroker,
		Topic:    cfg.MQTTTopic,
		ClientID: cfg.MQTTClientID,
	}
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
