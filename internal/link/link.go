// Package link owns the wireless connectivity lifecycle: bring the link up
// at startup with unbounded retry, force a working resolver, and expose the
// connection state the rest of the device reads.
package link

import (
	"context"
	"log/slog"
	"time"

	"carbonmon/internal/clock"
)

// State is the device's view of its connectivity, advancing
// Disconnected -> LinkUp -> StoreReady during startup.
type State int

const (
	Disconnected State = iota
	LinkUp
	StoreReady
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case LinkUp:
		return "link-up"
	case StoreReady:
		return "store-ready"
	default:
		return "unknown"
	}
}

// Driver is the boundary to the platform's wireless stack.
type Driver interface {
	// Associate initiates association with the network. It may return before
	// the link is actually up; IsUp reports the result.
	Associate(ssid, password string) error
	// IsUp reports whether the link is associated and carrying traffic.
	IsUp() bool
	// ConfigureResolver overrides the link's DNS servers.
	ConfigureResolver(servers ...string) error
}

// Manager brings the link up and tracks connection state. It is written for
// the device's single thread of control; nothing here is safe for concurrent
// use.
type Manager struct {
	driver        Driver
	clk           clock.Clock
	retryInterval time.Duration
	logger        *slog.Logger
	state         State
}

func NewManager(driver Driver, clk clock.Clock, retryInterval time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		driver:        driver,
		clk:           clk,
		retryInterval: retryInterval,
		logger:        logger,
		state:         Disconnected,
	}
}

func (m *Manager) State() State {
	return m.state
}

// Establish associates with the network and waits until the link is up,
// retrying forever at the fixed interval. Without a link the device has no
// other productive work, so the only way out besides success is ctx
// cancellation. An empty ssid skips association and waits for a
// pre-provisioned link.
func (m *Manager) Establish(ctx context.Context, ssid, password string) error {
	m.state = Disconnected

	if ssid != "" {
		m.logger.Info("associating with wireless network", "ssid", ssid)
		if err := m.driver.Associate(ssid, password); err != nil {
			m.logger.Warn("association attempt failed, will retry", "error", err)
		}
	} else {
		m.logger.Info("no ssid configured, waiting for pre-provisioned link")
	}

	for !m.driver.IsUp() {
		if err := m.clk.Sleep(ctx, m.retryInterval); err != nil {
			return err
		}
	}

	m.state = LinkUp
	m.logger.Info("wireless link up")
	return nil
}

// ConfigureResolver forces the given DNS servers on the link. The link's
// default resolution is known to break store connectivity, so this runs on
// every startup; a failure is reported but does not stop the device.
func (m *Manager) ConfigureResolver(servers ...string) {
	if err := m.driver.ConfigureResolver(servers...); err != nil {
		m.logger.Warn("resolver override failed", "servers", servers, "error", err)
		return
	}
	m.logger.Info("resolver configured", "servers", servers)
}

// MarkStoreReady records that the store session reached ready state. Only
// meaningful once the link is up.
func (m *Manager) MarkStoreReady() {
	if m.state == LinkUp {
		m.state = StoreReady
	}
}
