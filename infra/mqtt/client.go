package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/ridedispatch/core/model"
	coremqtt "github.com/kilianp07/ridedispatch/core/mqtt"
	"github.com/kilianp07/ridedispatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool            `json:"enabled"`
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// DefaultTopicPrefix is the root of every topic used by the bridge.
const DefaultTopicPrefix = "ridedispatch"

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.ClientID == "" {
		c.ClientID = "ridedispatch-" + uuid.NewString()[:8]
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the settings of an enabled bridge.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	switch c.AuthMethod {
	case "", "username_password", "mtls", "both":
	default:
		return fmt.Errorf("mqtt.auth_method %q is not supported", c.AuthMethod)
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 {
		return fmt.Errorf("mqtt retry settings must not be negative")
	}
	return nil
}

// EventTopic is the wildcard topic drivers publish their signals on.
func (c Config) EventTopic() string { return c.TopicPrefix + "/vehicle/+/event" }

// AssignmentTopic is the topic the assignment for vehicle id is sent to.
func (c Config) AssignmentTopic(id model.VehicleID) string {
	return fmt.Sprintf("%s/vehicle/%d/assignment", c.TopicPrefix, id)
}

// Driver event names carried in DriverEvent.Event.
const (
	EventArrivedAtPickup      = "arrived_at_pickup"
	EventDepartedPickup       = "departed_pickup"
	EventArrivedAtDestination = "arrived_at_destination"
	EventDroppedOff           = "dropped_off"
)

// DriverEvent is the payload published by the driver application.
type DriverEvent struct {
	MessageID string `json:"message_id"`
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
}

// Assignment is the payload sent to a driver when a trip is scheduled.
type Assignment struct {
	MessageID   string          `json:"message_id"`
	TripID      model.TripID    `json:"trip_id"`
	VehicleID   model.VehicleID `json:"vehicle_id"`
	Passenger   string          `json:"passenger"`
	Contact     string          `json:"contact"`
	GroupSize   int             `json:"group_size"`
	Pickup      model.Location  `json:"pickup"`
	Destination model.Location  `json:"destination"`
	Timestamp   int64           `json:"timestamp"`
}

// pahoClient is the subset of paho.Client used by PahoClient.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient bridges driver applications and the dispatcher over MQTT.
type PahoClient struct {
	cli      pahoClient
	cfg      Config
	notifier coremqtt.Notifier
	logger   logger.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the driver
// event topic. Signals are forwarded to n.
func NewPahoClient(cfg Config, n coremqtt.Notifier) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		cfg:      cfg,
		notifier: n,
		logger:   log,
		seen:     make(map[string]struct{}),
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if pc.notifier == nil {
			return
		}
		if token := c.Subscribe(cfg.EventTopic(), pc.qos("event"), pc.onDriverEvent); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) qos(kind string) byte {
	if q, ok := p.cfg.QoS[kind]; ok {
		return q
	}
	return 1
}

// vehicleFromTopic extracts the id from <prefix>/vehicle/<id>/event.
func (p *PahoClient) vehicleFromTopic(topic string) (model.VehicleID, bool) {
	rest, ok := strings.CutPrefix(topic, p.cfg.TopicPrefix+"/vehicle/")
	if !ok {
		return 0, false
	}
	idStr, ok := strings.CutSuffix(rest, "/event")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return model.VehicleID(id), true
}

func (p *PahoClient) onDriverEvent(_ paho.Client, msg paho.Message) {
	id, ok := p.vehicleFromTopic(msg.Topic())
	if !ok {
		p.logger.Warnf("ignoring driver event on %s", msg.Topic())
		return
	}
	var ev DriverEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		p.logger.Errorf("failed to decode driver event: %v", err)
		return
	}
	if ev.MessageID != "" && p.duplicate(ev.MessageID) {
		p.logger.Debugf("duplicate driver event %s", ev.MessageID)
		return
	}
	switch ev.Event {
	case EventArrivedAtPickup:
		p.notifier.NotifyArrivedAtPickup(id)
	case EventDepartedPickup:
		p.notifier.NotifyDepartedPickup(id)
	case EventArrivedAtDestination:
		p.notifier.NotifyArrivedAtDestination(id)
	case EventDroppedOff:
		p.notifier.NotifyDroppedOff(id)
	default:
		p.logger.Warnf("unknown driver event %q from vehicle %d", ev.Event, id)
		return
	}
	driverEvents.WithLabelValues(ev.Event).Inc()
}

// duplicate records id and reports whether it was seen before. The set is
// bounded by clearing it once it grows past maxSeen entries.
func (p *PahoClient) duplicate(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[id]; ok {
		return true
	}
	if len(p.seen) >= maxSeen {
		p.seen = make(map[string]struct{})
	}
	p.seen[id] = struct{}{}
	return false
}

const maxSeen = 4096

// PublishAssignment sends the trip to the vehicle assignment topic and
// returns the message identifier.
func (p *PahoClient) PublishAssignment(v model.Vehicle, t model.Trip) (string, error) {
	msgID := uuid.NewString()
	payload, err := json.Marshal(Assignment{
		MessageID:   msgID,
		TripID:      t.ID,
		VehicleID:   v.ID,
		Passenger:   t.Passenger.Name,
		Contact:     t.Passenger.Contact,
		GroupSize:   t.Passenger.GroupSize,
		Pickup:      t.Pickup,
		Destination: t.Destination,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	topic := p.cfg.AssignmentTopic(v.ID)
	backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos("assignment"), false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			publishSuccess.Inc()
			p.logger.Infof("sent assignment %s to %s", msgID, topic)
			return msgID, nil
		}
		publishFailure.Inc()
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(backoff * time.Duration(1<<attempt))
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %w", coremqtt.ErrPublishExhausted, p.cfg.MaxRetries+1, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
