package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"carbonmon/internal/clock"
)

// Options configure the MQTT-backed store session.
type Options struct {
	// Address is the broker address with scheme and trailing separator
	// already stripped (see StripAddress).
	Address  string
	ClientID string
	// Username and Password may both be empty, in which case the session is
	// anonymous.
	Username string
	Password string
	// ReadyInterval is the delay between readiness polls during
	// EstablishSession.
	ReadyInterval time.Duration
}

// MQTTStore implements Client over an MQTT session. The broker connection is
// the session: IsReady reflects it, and paho's auto-reconnect keeps it healed
// across transient drops without controller involvement.
type MQTTStore struct {
	client mqtt.Client
	opts   Options
	clk    clock.Clock
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
}

func NewMQTT(opts Options, clk clock.Clock, logger *slog.Logger) *MQTTStore {
	s := &MQTTStore{
		opts:   opts,
		clk:    clk,
		logger: logger,
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(fmt.Sprintf("tcp://%s", opts.Address))
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}

	co.SetCleanSession(true)

	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(5 * time.Second)
	co.SetMaxReconnectInterval(60 * time.Second)

	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(10 * time.Second)

	co.SetOnConnectHandler(func(_ mqtt.Client) {
		s.setConnected(true)
		logger.Info("store session ready", "address", opts.Address)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("store session lost", "error", err)
	})

	s.client = mqtt.NewClient(co)
	return s
}

// EstablishSession starts the connection and polls readiness up to attempts
// times at the configured interval. With ConnectRetry set the connection
// attempt keeps working in the background, so exhausting the bound leaves the
// device in degraded mode rather than giving up on the store for good.
func (s *MQTTStore) EstablishSession(ctx context.Context, attempts int) error {
	s.client.Connect()
	return awaitReady(ctx, s.IsReady, attempts, s.opts.ReadyInterval, s.clk)
}

// IsReady reports whether a write attempt has a live session to use.
func (s *MQTTStore) IsReady() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Write publishes the record as JSON under the path. The wait is bounded so
// a slow broker can never stall the cycle loop indefinitely.
func (s *MQTTStore) Write(path string, rec Record) error {
	if !s.IsReady() {
		return fmt.Errorf("store not ready")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	token := s.client.Publish(path, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("write timeout for path %s", path)
	}
	if token.Error() != nil {
		return fmt.Errorf("write %s: %w", path, token.Error())
	}

	s.logger.Debug("record written", "path", path)
	return nil
}

// Close shuts the session down. Safe to call regardless of session state.
func (s *MQTTStore) Close() {
	s.client.Disconnect(250)
	s.setConnected(false)
	s.logger.Info("store session closed")
}

func (s *MQTTStore) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
