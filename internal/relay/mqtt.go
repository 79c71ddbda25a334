package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const TopicPrefix = "commitsonic/"

var ErrNotConnected = errors.New("relay: mqtt not connected")

// MQTTRelay publishes each batch on commitsonic/<channel> with QoS 0.
type MQTTRelay struct {
	broker string
	client mqtt.Client

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

// NewMQTTRelay connects to broker (host:port) and keeps reconnecting in the
// background when the connection drops.
func NewMQTTRelay(broker, clientID string) (*MQTTRelay, error) {
	r := &MQTTRelay{broker: broker}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		r.setConnected(true)
		logger.Info("mqtt connection established",
			zap.String("broker", broker),
			zap.String("client_id", clientID))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		r.setConnected(false)
		logger.Warn("mqtt connection lost, will auto-reconnect",
			zap.String("broker", broker),
			zap.Error(err))
	}

	r.client = mqtt.NewClient(opts)

	token := r.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("relay: mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("relay: mqtt connection failed: %w", err)
	}

	r.setConnected(true)
	return r, nil
}

func newMQTTRelayWithClient(client mqtt.Client) *MQTTRelay {
	return &MQTTRelay{client: client, connected: client.IsConnected()}
}

func (r *MQTTRelay) Publish(ctx context.Context, repoFullName string, commits []models.Commit) error {
	if !r.isConnected() {
		r.countError()
		return ErrNotConnected
	}

	channel, payload, err := encode(repoFullName, commits)
	if err != nil {
		r.countError()
		return err
	}
	topic := TopicPrefix + channel

	token := r.client.Publish(topic, 0, false, payload)

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		r.countError()
		return fmt.Errorf("relay: mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		r.countError()
		return fmt.Errorf("relay: mqtt publish to %s failed: %w", topic, err)
	}

	r.mu.Lock()
	r.published++
	r.mu.Unlock()

	logger.Debug("batch relayed",
		zap.String("driver", DriverMQTT),
		zap.String("topic", topic),
		zap.Int("commit_count", len(commits)),
		zap.Int("size", len(payload)))
	return nil
}

// Stats returns how many batches were published and how many failed.
func (r *MQTTRelay) Stats() (published, failed uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.published, r.errors
}

func (r *MQTTRelay) Close() error {
	if r.client != nil && r.client.IsConnected() {
		r.client.Disconnect(250)
		logger.Info("mqtt disconnected", zap.String("broker", r.broker))
	}
	r.setConnected(false)
	return nil
}

func (r *MQTTRelay) setConnected(v bool) {
	r.mu.Lock()
	r.connected = v
	r.mu.Unlock()
}

func (r *MQTTRelay) isConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

func (r *MQTTRelay) countError() {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
}
