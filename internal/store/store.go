// Package store is the client side of the remote observation store.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"carbonmon/internal/clock"
)

// ErrNotReady is returned by EstablishSession when the store did not reach
// ready state within the configured attempt bound. The device continues in
// degraded mode and retries implicitly through IsReady every cycle.
var ErrNotReady = errors.New("store session not ready")

// Record is one observation as written to the store.
type Record struct {
	CO2       int     `json:"co2"`
	Humidity  int     `json:"humidity"`
	Credits   float64 `json:"credits"`
	Emissions float64 `json:"emissions"`
	Offset    bool    `json:"offset"`
	Timestamp int64   `json:"timestamp"`
}

// Client is what the cycle controller sees of the store.
type Client interface {
	// EstablishSession brings the session to ready state, polling a bounded
	// number of attempts. Returns ErrNotReady on exhaustion.
	EstablishSession(ctx context.Context, attempts int) error
	// IsReady is cheap and non-blocking; called every cycle.
	IsReady() bool
	// Write appends rec under the hierarchical path. Best effort: an error
	// means the record is lost.
	Write(path string, rec Record) error
	Close()
}

// StripAddress derives the dialable store address from the configured
// URL-like string by dropping the scheme prefix and any trailing separator.
func StripAddress(raw string) string {
	addr := strings.TrimSpace(raw)
	for _, scheme := range []string{"https://", "http://", "ssl://", "tcp://", "mqtt://"} {
		if strings.HasPrefix(addr, scheme) {
			addr = addr[len(scheme):]
			break
		}
	}
	return strings.TrimSuffix(addr, "/")
}

// awaitReady polls ready up to attempts times, sleeping interval between
// polls. Separated from the MQTT plumbing so the bound is testable without a
// broker.
func awaitReady(ctx context.Context, ready func() bool, attempts int, interval time.Duration, clk clock.Clock) error {
	for i := 0; i < attempts; i++ {
		if ready() {
			return nil
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return err
		}
	}
	if ready() {
		return nil
	}
	return ErrNotReady
}
