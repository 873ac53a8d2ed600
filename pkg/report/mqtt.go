package report

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"mqsense/pkg/config"
	"mqsense/pkg/station"
)

const (
	connectTimeout = 30 * time.Second
	publishTimeout = 10 * time.Second
)

// MQTT publishes each snapshot as a JSON payload to a broker topic.
type MQTT struct {
	cfg    config.MQTTConfig
	client mqtt.Client
}

// NewMQTT creates the reporter. Connect must be called before snapshots are
// delivered.
func NewMQTT(cfg config.MQTTConfig) *MQTT {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	return &MQTT{
		cfg:    cfg,
		client: mqtt.NewClient(opts),
	}
}

// Connect establishes the broker connection.
func (m *MQTT) Connect() error {
	token := m.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connection timeout to %s", m.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	return nil
}

// Disconnect closes the broker connection.
func (m *MQTT) Disconnect() {
	m.client.Disconnect(250)
}

// Report publishes the snapshot. Delivery failures are logged, never
// propagated: the measurement loop does not stall on the broker.
func (m *MQTT) Report(snap station.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.WithError(err).Error("failed to marshal snapshot")
		return
	}

	token := m.client.Publish(m.cfg.Topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.WithField("topic", m.cfg.Topic).Warn("publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", m.cfg.Topic).Warn("publish failed")
	}
}
