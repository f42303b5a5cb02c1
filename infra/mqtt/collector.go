// Package mqtt ingests parking sensor readings from an MQTT broker
// and fans them out on the reading bus.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/core/model"
	"github.com/pun33th45/spotmate/infra/logger"
	"github.com/pun33th45/spotmate/internal/eventbus"
)

// DefaultTopic matches per-zone occupancy publications, one level for
// the zone identifier.
const DefaultTopic = "parking/zone/+/occupancy"

// Config defines the connection parameters for the sensor collector.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`

	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults applies fallback values.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = "tcp://localhost:1883"
	}
	if c.ClientID == "" {
		c.ClientID = "spotmate-collector"
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.UseTLS && c.TLSConfig == nil {
		if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
			return fmt.Errorf("tls requires client_cert, client_key and ca_bundle")
		}
	}
	return nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the
// config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
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
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Collector subscribes to the occupancy topic and publishes decoded
// readings on the bus.
type Collector struct {
	cli   pahoClient
	cfg   Config
	bus   *eventbus.Bus[model.OccupancyReading]
	sink  coremetrics.Sink
	log   logger.Logger
	clock func() time.Time
}

// NewCollector connects to the broker and subscribes to the occupancy
// topic. The subscription is re-established on every reconnect.
func NewCollector(cfg Config, bus *eventbus.Bus[model.OccupancyReading], sink coremetrics.Sink) (*Collector, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	log := logger.New("mqtt_collector")
	col := &Collector{cfg: cfg, bus: bus, sink: sink, log: log, clock: time.Now}

	opts, err := newClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected, subscribing to %s", cfg.Topic)
		if token := c.Subscribe(cfg.Topic, cfg.QoS, col.onReading); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	col.cli = cli
	return col, nil
}

func newClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func (c *Collector) onReading(_ paho.Client, msg paho.Message) {
	var reading model.OccupancyReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		c.log.Errorf("decode reading on %s: %v", msg.Topic(), err)
		return
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = c.clock()
	}
	rec := reading.Record()
	if err := rec.Validate(); err != nil {
		c.log.Warnf("drop reading on %s: %v", msg.Topic(), err)
		return
	}
	c.bus.Publish(reading)
	if err := c.sink.RecordReading(coremetrics.ReadingEvent{
		ZoneID:    reading.ZoneID,
		Day:       reading.Day,
		Hour:      reading.Hour,
		Occupancy: reading.Occupancy,
		Time:      reading.Timestamp,
	}); err != nil {
		c.log.Warnf("record reading metrics: %v", err)
	}
}

// Close disconnects from the broker.
func (c *Collector) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
