package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/telemetry"
)

// robotProfile is one entry of the simulated catalogue.
type robotProfile struct {
	RobotModel      string
	ControllerModel string
	Category        string
	Axes            int
}

var catalogue = []robotProfile{
	{RobotModel: "GP8", ControllerModel: "YRC1000micro", Category: "Handling", Axes: 6},
	{RobotModel: "GP180", ControllerModel: "YRC1000", Category: "Handling", Axes: 6},
	{RobotModel: "AR1440", ControllerModel: "YRC1000", Category: "Arc Welding", Axes: 6},
	{RobotModel: "SP165", ControllerModel: "DX200", Category: "Spot Welding", Axes: 6},
	{RobotModel: "MPX2600", ControllerModel: "DX200", Category: "Painting", Axes: 6},
	{RobotModel: "PL190", ControllerModel: "YRC1000", Category: "Palletizing", Axes: 4},
	{RobotModel: "HC10DTP", ControllerModel: "YRC1000", Category: "Assembly", Axes: 6},
}

var alarms = []struct {
	Code    int
	Message string
}{
	{4100, "Overrun"},
	{4315, "Collision detected"},
	{1030, "Encoder backup battery low"},
	{4511, "Servo amplifier overheat"},
}

type simConfig struct {
	APIURL       string
	Token        string
	Username     string
	Password     string
	FleetSize    int
	Interval     time.Duration
	HoursPerTick int
	AlarmRate    float64
	MQTTBroker   string
	MQTTTopic    string
}

func loadSimConfig() simConfig {
	cfg := simConfig{
		APIURL:       os.Getenv("API_BASE_URL"),
		Token:        os.Getenv("SIM_AUTH_TOKEN"),
		Username:     os.Getenv("SIM_USERNAME"),
		Password:     os.Getenv("SIM_PASSWORD"),
		FleetSize:    10,
		Interval:     2 * time.Second,
		HoursPerTick: 1,
		AlarmRate:    0.02,
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTTopic:    os.Getenv("MQTT_TOPIC"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8080/api"
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = "robots/+/telemetry"
	}
	if n, err := strconv.Atoi(os.Getenv("FLEET_SIZE")); err == nil && n > 0 {
		cfg.FleetSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("SIM_TICK_SECONDS")); err == nil && n >= 1 {
		cfg.Interval = time.Duration(n) * time.Second
	}
	if n, err := strconv.Atoi(os.Getenv("SIM_HOURS_PER_TICK")); err == nil && n >= 0 {
		cfg.HoursPerTick = n
	}
	if f, err := strconv.ParseFloat(os.Getenv("SIM_ALARM_RATE"), 64); err == nil && f >= 0 && f <= 1 {
		cfg.AlarmRate = f
	}
	return cfg
}

// apiClient talks to the fleet API with an optional bearer token.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{baseURL: baseURL, token: token, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *apiClient) post(ctx context.Context, path string, in, out interface{}) (int, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// login obtains a token. An unknown account is registered first; on an empty
// user store that account becomes the admin and can create controllers.
func (c *apiClient) login(ctx context.Context, username, password string) error {
	var auth models.LoginResponse
	code, err := c.post(ctx, "/auth/login", models.LoginRequest{Username: username, Password: password}, &auth)
	if err != nil {
		return err
	}
	if code == http.StatusUnauthorized {
		reg := models.RegisterRequest{
			Username: username,
			Password: password,
			Email:    username + "@robot-sim.local",
		}
		if code, err = c.post(ctx, "/auth/register", reg, &auth); err != nil {
			return err
		}
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return fmt.Errorf("login failed with status: %d", code)
	}
	c.token = auth.Token
	return nil
}

func (c *apiClient) createController(ctx context.Context, name string, profile robotProfile, servoHours int) (*models.Controller, error) {
	body := map[string]interface{}{
		"name":             name,
		"model":            profile.ControllerModel,
		"robot_model":      profile.RobotModel,
		"category":         profile.Category,
		"location":         "Simulated Line",
		"servo_power_time": servoHours,
	}
	var created models.Controller
	code, err := c.post(ctx, "/controllers", body, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	if code != http.StatusCreated {
		return nil, fmt.Errorf("controller creation failed with status: %d", code)
	}
	log.WithFields(log.Fields{
		"controller_id": created.ID.Hex(),
		"robot_model":   profile.RobotModel,
		"servo_hours":   servoHours,
	}).Info("Created controller")
	return &created, nil
}

// sender delivers one telemetry sample.
type sender interface {
	Send(ctx context.Context, sample models.Telemetry) error
}

type httpSender struct {
	client *apiClient
}

func (s httpSender) Send(ctx context.Context, sample models.Telemetry) error {
	code, err := s.client.post(ctx, "/telemetry", sample, nil)
	if err != nil {
		return err
	}
	if code != http.StatusAccepted {
		return fmt.Errorf("telemetry rejected with status: %d", code)
	}
	return nil
}

type mqttSender struct {
	pub *telemetry.Publisher
}

func (s mqttSender) Send(_ context.Context, sample models.Telemetry) error {
	return s.pub.Publish(sample)
}

// controllerState is the simulated running state of one controller.
type controllerState struct {
	ID         string
	Profile    robotProfile
	ServoHours int
	rng        *rand.Rand
}

// step advances servo hours and produces the next sample.
func (s *controllerState) step(hoursPerTick int, alarmRate float64, now time.Time) models.Telemetry {
	s.ServoHours += hoursPerTick
	sample := models.Telemetry{
		ControllerID:   s.ID,
		Timestamp:      now.UTC(),
		ServoPowerTime: s.ServoHours,
		Torque:         make([]float64, s.Profile.Axes),
	}
	for i := range sample.Torque {
		sample.Torque[i] = 20 + s.rng.Float64()*60
	}
	if alarmRate > 0 && s.rng.Float64() < alarmRate {
		a := alarms[s.rng.Intn(len(alarms))]
		sample.AlarmCode = a.Code
		sample.AlarmMessage = a.Message
	}
	return sample
}

func simulateController(ctx context.Context, out sender, s *controllerState, cfg simConfig) {
	tick := time.NewTicker(cfg.Interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			sample := s.step(cfg.HoursPerTick, cfg.AlarmRate, now)
			if err := out.Send(ctx, sample); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).WithField("controller_id", s.ID).Error("Failed to send telemetry")
				continue
			}
			log.WithFields(log.Fields{
				"controller_id": s.ID,
				"servo_hours":   sample.ServoPowerTime,
				"alarm_code":    sample.AlarmCode,
			}).Debug("Sent telemetry")
		}
	}
}

func run(ctx context.Context, cfg simConfig) error {
	client := newAPIClient(cfg.APIURL, cfg.Token)
	if client.token == "" && cfg.Username != "" {
		if err := client.login(ctx, cfg.Username, cfg.Password); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	var out sender = httpSender{client: client}
	if cfg.MQTTBroker != "" {
		pub, err := telemetry.NewPublisher(ctx, telemetry.MQTTOptions{Broker: cfg.MQTTBroker, Topic: cfg.MQTTTopic})
		if err != nil {
			return err
		}
		defer pub.Close()
		out = mqttSender{pub: pub}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	states := make([]*controllerState, 0, cfg.FleetSize)
	for i := 0; i < cfg.FleetSize; i++ {
		profile := catalogue[rng.Intn(len(catalogue))]
		hours := rng.Intn(7000)
		created, err := client.createController(ctx, fmt.Sprintf("sim-%s-%d", profile.RobotModel, i+1), profile, hours)
		if err != nil {
			log.WithError(err).Error("Failed to create controller")
			continue
		}
		states = append(states, &controllerState{
			ID:         created.ID.Hex(),
			Profile:    profile,
			ServoHours: hours,
			rng:        rand.New(rand.NewSource(rng.Int63())),
		})
	}

	log.WithField("created_controllers", len(states)).Info("Controller creation completed")
	if len(states) == 0 {
		return errors.New("no controllers created; check credentials and API reachability")
	}

	var wg sync.WaitGroup
	for _, s := range states {
		wg.Add(1)
		go func(s *controllerState) {
			defer wg.Done()
			simulateController(ctx, out, s, cfg)
		}(s)
	}
	log.Info("Telemetry simulation started")
	wg.Wait()
	return nil
}

func main() {
	cfg := loadSimConfig()
	log.WithFields(log.Fields{
		"fleet_size":     cfg.FleetSize,
		"api_url":        cfg.APIURL,
		"interval":       cfg.Interval,
		"hours_per_tick": cfg.HoursPerTick,
		"mqtt":           cfg.MQTTBroker != "",
	}).Info("Starting robot fleet simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}
