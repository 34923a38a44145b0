// Package telemetry ingests controller samples from HTTP and MQTT.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/db"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/models"
)

// ErrInvalidSample is returned for samples that fail validation.
var ErrInvalidSample = errors.New("invalid telemetry sample")

const (
	maxClockSkew = 5 * time.Minute
	maxAxes      = 12
	defaultLimit = 100
)

// Sink accepts telemetry samples.
type Sink interface {
	Ingest(ctx context.Context, sample *models.Telemetry, source string) error
}

// Ingestor stores samples and advances the controller's servo hours.
type Ingestor struct {
	controllers db.ControllerCollection
	samples     db.TelemetryCollection
	now         func() time.Time
}

// NewIngestor creates an ingestor.
func NewIngestor(controllers db.ControllerCollection, samples db.TelemetryCollection) *Ingestor {
	return &Ingestor{
		controllers: controllers,
		samples:     samples,
		now:         time.Now,
	}
}

// Ingest validates, stores and applies one sample. source labels metrics and logs.
func (i *Ingestor) Ingest(ctx context.Context, sample *models.Telemetry, source string) error {
	err := i.ingest(ctx, sample)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.IncTelemetryIngest(source, result)
	return err
}

func (i *Ingestor) ingest(ctx context.Context, sample *models.Telemetry) error {
	if err := i.normalize(sample); err != nil {
		return err
	}

	controller, err := i.controllers.FindControllerByID(ctx, sample.ControllerID)
	if err != nil {
		return fmt.Errorf("loading controller: %w", err)
	}
	sample.ControllerID = controller.ID.Hex()

	// Advance before storing so a failed advance leaves no orphan sample. The
	// advance only ever raises the counter, so a retried sample is harmless.
	if sample.ServoPowerTime > controller.ServoPowerTime {
		if err := i.controllers.AdvanceServoHours(ctx, sample.ControllerID, sample.ServoPowerTime); err != nil {
			return fmt.Errorf("advancing servo hours: %w", err)
		}
	}
	if err := i.samples.InsertTelemetry(ctx, sample); err != nil {
		return fmt.Errorf("saving telemetry: %w", err)
	}

	if sample.HasAlarm() {
		log.WithFields(log.Fields{
			"controller_id": sample.ControllerID,
			"alarm_code":    sample.AlarmCode,
			"alarm_message": sample.AlarmMessage,
		}).Warn("Controller alarm reported")
	}
	return nil
}

func (i *Ingestor) normalize(sample *models.Telemetry) error {
	if sample == nil {
		return fmt.Errorf("%w: empty sample", ErrInvalidSample)
	}
	sample.ControllerID = strings.TrimSpace(sample.ControllerID)
	if sample.ControllerID == "" {
		return fmt.Errorf("%w: controller_id is required", ErrInvalidSample)
	}
	if sample.ServoPowerTime < 0 {
		return fmt.Errorf("%w: servo_power_time must not be negative", ErrInvalidSample)
	}
	if sample.AlarmCode < 0 {
		return fmt.Errorf("%w: alarm_code must not be negative", ErrInvalidSample)
	}
	if len(sample.Torque) > maxAxes {
		return fmt.Errorf("%w: at most %d torque axes", ErrInvalidSample, maxAxes)
	}
	for _, v := range sample.Torque {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: torque values must be finite", ErrInvalidSample)
		}
	}

	now := i.now().UTC()
	if sample.Timestamp.IsZero() {
		sample.Timestamp = now
	} else if sample.Timestamp.After(now.Add(maxClockSkew)) {
		return fmt.Errorf("%w: timestamp is in the future", ErrInvalidSample)
	}
	sample.Timestamp = sample.Timestamp.UTC()
	return nil
}

// Recent returns the newest samples of a controller. A non-positive limit uses the default.
func (i *Ingestor) Recent(ctx context.Context, controllerID string, alarmsOnly bool, limit int64) ([]models.Telemetry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return i.samples.FindTelemetry(ctx, db.TelemetryQuery{
		ControllerID: controllerID,
		AlarmsOnly:   alarmsOnly,
		Limit:        limit,
	})
}
