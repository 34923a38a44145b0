package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/metrics"
	"github.com/ukydev/robot-fleet/internal/models"
)

const (
	qosAtLeastOnce = 1
	connectTimeout = 10 * time.Second
	ingestTimeout  = 5 * time.Second
)

// MQTTOptions configures a broker connection.
type MQTTOptions struct {
	Broker   string
	Topic    string // subscription pattern with a single "+" for the controller id
	ClientID string
}

func (o MQTTOptions) clientOptions(prefix string) *mqtt.ClientOptions {
	clientID := o.ClientID
	if clientID == "" {
		clientID = prefix + "-" + uuid.NewString()[:8]
	}
	return mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})
}

// Subscriber feeds samples published on the telemetry topic into a Sink.
type Subscriber struct {
	opts   MQTTOptions
	sink   Sink
	client mqtt.Client
}

// NewSubscriber creates a subscriber for opts.Topic.
func NewSubscriber(opts MQTTOptions, sink Sink) (*Subscriber, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt broker required")
	}
	if strings.Count(opts.Topic, "+") != 1 {
		return nil, fmt.Errorf("mqtt topic %q must contain exactly one '+' wildcard", opts.Topic)
	}
	return &Subscriber{opts: opts, sink: sink}, nil
}

// Start begins connecting and returns without waiting for the broker. The client
// retries until the broker answers; the topic is subscribed on every (re)connect.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	options := s.opts.clientOptions("robot-fleet")
	options.SetOnConnectHandler(func(c mqtt.Client) {
		log.WithField("broker", s.opts.Broker).Info("Connected to MQTT broker")
		token := c.Subscribe(s.opts.Topic, qosAtLeastOnce, s.handle)
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("topic", s.opts.Topic).Error("MQTT subscribe failed")
			return
		}
		log.WithField("topic", s.opts.Topic).Info("Subscribed to telemetry topic")
	})

	s.client = mqtt.NewClient(options)
	s.client.Connect()
	log.WithField("broker", s.opts.Broker).Info("Connecting to MQTT broker")
	return nil
}

// Stop disconnects from the broker and abandons any pending connect retry.
func (s *Subscriber) Stop() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	fields := log.Fields{"topic": msg.Topic()}

	controllerID, ok := ControllerIDFromTopic(s.opts.Topic, msg.Topic())
	if !ok {
		metrics.IncTelemetryIngest(metrics.SourceMQTT, metrics.ResultError)
		log.WithFields(fields).Warn("Ignoring message on unexpected topic")
		return
	}

	var sample models.Telemetry
	if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
		metrics.IncTelemetryIngest(metrics.SourceMQTT, metrics.ResultError)
		log.WithFields(fields).WithError(err).Warn("Malformed telemetry payload")
		return
	}
	if sample.ControllerID != "" && sample.ControllerID != controllerID {
		metrics.IncTelemetryIngest(metrics.SourceMQTT, metrics.ResultError)
		log.WithFields(fields).WithField("payload_controller_id", sample.ControllerID).
			Warn("Payload controller id does not match topic")
		return
	}
	sample.ControllerID = controllerID

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()
	if err := s.sink.Ingest(ctx, &sample, metrics.SourceMQTT); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to ingest telemetry")
		return
	}
	log.WithFields(fields).WithField("servo_power_time", sample.ServoPowerTime).Debug("Ingested telemetry")
}

// ControllerIDFromTopic returns the topic level matched by the "+" in pattern.
func ControllerIDFromTopic(pattern, topic string) (string, bool) {
	want := strings.Split(pattern, "/")
	got := strings.Split(topic, "/")
	if len(want) != len(got) {
		return "", false
	}
	id := ""
	for i, level := range want {
		switch {
		case level == "+":
			id = got[i]
		case level != got[i]:
			return "", false
		}
	}
	return id, id != ""
}

// TopicFor fills the "+" in pattern with controllerID.
func TopicFor(pattern, controllerID string) string {
	return strings.Replace(pattern, "+", controllerID, 1)
}

// Publisher sends samples to the broker, one topic per controller.
type Publisher struct {
	pattern string
	client  mqtt.Client
}

// NewPublisher connects a publishing client.
func NewPublisher(ctx context.Context, opts MQTTOptions) (*Publisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt broker required")
	}
	client := mqtt.NewClient(opts.clientOptions("robot-sim"))
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Publisher{pattern: opts.Topic, client: client}, nil
}

// Publish sends sample on its controller's topic.
func (p *Publisher) Publish(sample models.Telemetry) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	token := p.client.Publish(TopicFor(p.pattern, sample.ControllerID), qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(connectTimeout) {
		return errors.New("mqtt publish timed out")
	}
	return token.Error()
}

// Close disconnects the client.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
