package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
)

// DefaultTopic is the MQTT topic prefix events are published under.
const DefaultTopic = "service-ledger/events"

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes events as JSON to <topic>/<kind>.
type MQTTSink struct {
	client  publisher
	topic   string
	qos     byte
	timeout time.Duration
}

// MQTTConfig configures the MQTT connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Timeout  time.Duration
}

// ConnectMQTT connects to the broker and returns a sink plus a function that
// disconnects it.
func ConnectMQTT(cfg MQTTConfig) (*MQTTSink, func(), error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "service-ledger"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	sink := newMQTTSink(client, cfg)
	return sink, func() { client.Disconnect(250) }, nil
}

func newMQTTSink(client publisher, cfg MQTTConfig) *MQTTSink {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &MQTTSink{client: client, topic: cfg.Topic, qos: cfg.QoS, timeout: cfg.Timeout}
}

// Publish implements Sink.
func (s *MQTTSink) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	topic := s.topic + "/" + string(event.Kind)
	token := s.client.Publish(topic, s.qos, false, payload)

	select {
	case <-token.Done():
	case <-time.After(s.timeout):
		return fmt.Errorf("mqtt publish to %s: timeout", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}
