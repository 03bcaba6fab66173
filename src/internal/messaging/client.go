package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

const (
	BackendMQTT  = "mqtt"
	BackendKafka = "kafka"

	mqttQoS          = 1
	disconnectQuiesc = 1000
)

// Broker is the part of Client the publisher and the command handler use.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic string, handler func(payload []byte)) error
}

// Client is the unified messaging client (MQTT or Kafka).
type Client struct {
	mu       sync.RWMutex
	cfg      *config.MessagingConfig
	backend  string
	clientID string
	logger   zerolog.Logger

	mqttConn mqtt.Client
	kafkaW   *kafkago.Writer
	readers  []*kafkago.Reader
	cancel   context.CancelFunc
}

var _ Broker = (*Client)(nil)

// NewClient creates a messaging client based on config. routerName is used to
// derive a default client ID and Kafka consumer group.
func NewClient(cfg *config.MessagingConfig, routerName string) *Client {
	clientID := ""
	if cfg.MQTT != nil {
		clientID = cfg.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "ikuai-bridge-" + routerName + "-" + uuid.NewString()[:8]
	}
	return &Client{
		cfg:      cfg,
		backend:  cfg.Backend,
		clientID: clientID,
		logger:   log.With("messaging"),
	}
}

// ClientID returns the MQTT client ID in use.
func (c *Client) ClientID() string {
	return c.clientID
}

// Connect establishes the messaging connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case BackendMQTT:
		return c.connectMQTT()
	case BackendKafka:
		return c.connectKafka()
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown messaging backend: %q", c.backend), nil)
	}
}

func (c *Client) connectMQTT() error {
	if c.cfg.MQTT == nil {
		return errors.NewConfigError("messaging.mqtt section is required for the mqtt backend", nil)
	}
	broker := fmt.Sprintf("tcp://%s:%d", c.cfg.MQTT.Broker, c.cfg.MQTT.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(c.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.logger.Warn().Err(err).Msg("MQTT connection lost")
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			c.logger.Info().Str("broker", broker).Msg("MQTT connected")
		})
	if c.cfg.MQTT.Username != "" {
		opts.SetUsername(c.cfg.MQTT.Username)
		opts.SetPassword(c.cfg.MQTT.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.NewNetworkError("mqtt connect", err)
	}
	c.mqttConn = client
	return nil
}

func (c *Client) connectKafka() error {
	if c.cfg.Kafka == nil {
		return errors.NewConfigError("messaging.kafka section is required for the kafka backend", nil)
	}
	c.kafkaW = &kafkago.Writer{
		Addr:                   kafkago.TCP(c.cfg.Kafka.Brokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	c.logger.Info().Strs("brokers", c.cfg.Kafka.Brokers).Msg("Kafka writer ready")
	return nil
}

// Publish sends a message to topic. MQTT messages are retained when configured.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.backend {
	case BackendMQTT:
		if c.mqttConn == nil || !c.mqttConn.IsConnected() {
			return errors.NewNetworkError("mqtt not connected", nil)
		}
		token := c.mqttConn.Publish(topic, mqttQoS, c.cfg.MQTT.Retain, payload)
		select {
		case <-token.Done():
			return token.Error()
		case <-ctx.Done():
			return ctx.Err()
		}
	case BackendKafka:
		if c.kafkaW == nil {
			return errors.NewNetworkError("kafka writer not initialized", nil)
		}
		return c.kafkaW.WriteMessages(ctx, kafkago.Message{
			Topic: KafkaTopic(topic),
			Value: payload,
		})
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown messaging backend: %q", c.backend), nil)
	}
}

// Subscribe registers a handler for messages on topic.
func (c *Client) Subscribe(topic string, handler func(payload []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case BackendMQTT:
		if c.mqttConn == nil {
			return errors.NewNetworkError("mqtt not connected", nil)
		}
		token := c.mqttConn.Subscribe(topic, mqttQoS, func(_ mqtt.Client, msg mqtt.Message) {
			handler(msg.Payload())
		})
		token.Wait()
		return token.Error()
	case BackendKafka:
		groupID := c.cfg.Kafka.GroupID
		if groupID == "" {
			groupID = c.clientID
		}
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: c.cfg.Kafka.Brokers,
			Topic:   KafkaTopic(topic),
			GroupID: groupID,
		})
		c.readers = append(c.readers, reader)

		ctx, cancel := context.WithCancel(context.Background())
		prev := c.cancel
		c.cancel = func() {
			cancel()
			if prev != nil {
				prev()
			}
		}
		go func() {
			for {
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() == nil {
						c.logger.Error().Err(err).Str("topic", reader.Config().Topic).Msg("Kafka read failed")
					}
					return
				}
				handler(msg.Value)
			}
		}()
		return nil
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown messaging backend: %q", c.backend), nil)
	}
}

// IsConnected returns whether the messaging client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.backend {
	case BackendMQTT:
		return c.mqttConn != nil && c.mqttConn.IsConnected()
	case BackendKafka:
		return c.kafkaW != nil
	default:
		return false
	}
}

// Close shuts down the messaging connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.mqttConn != nil {
		c.mqttConn.Disconnect(disconnectQuiesc)
		c.mqttConn = nil
	}
	if c.kafkaW != nil {
		c.kafkaW.Close()
		c.kafkaW = nil
	}
	for _, r := range c.readers {
		r.Close()
	}
	c.readers = nil
}

// KafkaTopic maps an MQTT-style topic path to a valid Kafka topic name.
func KafkaTopic(topic string) string {
	return strings.ReplaceAll(strings.Trim(topic, "/"), "/", ".")
}
