package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"carbonmon/internal/clock"
	"carbonmon/internal/config"
	"carbonmon/internal/cycle"
	"carbonmon/internal/display"
	"carbonmon/internal/link"
	"carbonmon/internal/sensor"
	"carbonmon/internal/store"
)

// Resolver servers forced onto the link after association. The link's
// default name resolution is known to break store connectivity.
var resolverServers = []string{"8.8.8.8", "8.8.4.4"}

// splashHold keeps the boot screen visible before cycling starts.
const splashHold = 2 * time.Second

// Run executes the device lifecycle: bring the link up (unbounded), force
// the resolver, establish the store session (bounded, degradable), bring up
// the panel and sensors (fatal on failure), then hand control to the cycle
// loop until ctx is done.
func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	clk := clock.NewMonotonic()

	mgr := link.NewManager(link.NewNMDriver(cfg.WifiInterface), clk, cfg.LinkRetryInterval, logger)
	if err := mgr.Establish(ctx, cfg.WifiSSID, cfg.WifiPassword); err != nil {
		return err
	}
	mgr.ConfigureResolver(resolverServers...)

	st := store.NewMQTT(store.Options{
		Address:       store.StripAddress(cfg.StoreURL),
		ClientID:      cfg.StoreClientID,
		Username:      cfg.StoreUsername,
		Password:      cfg.StorePassword,
		ReadyInterval: cfg.StoreReadyInterval,
	}, clk, logger)
	defer st.Close()

	if err := st.EstablishSession(ctx, cfg.StoreReadyAttempts); err != nil {
		if !errors.Is(err, store.ErrNotReady) {
			return err
		}
		logger.Warn("store session timed out, continuing without persistence",
			"attempts", cfg.StoreReadyAttempts,
			"state", mgr.State().String(),
		)
	} else {
		mgr.MarkStoreReady()
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("hardware init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("i2c open: %w", err)
	}
	defer bus.Close()

	// A device that cannot show status is non-functional; display init
	// failure is the one fatal error past this point.
	sink, err := display.NewSSD1306(bus)
	if err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	defer sink.Close()

	src, err := sensor.NewADS1115(bus, cfg.CO2Channel, cfg.HumidityChannel, logger)
	if err != nil {
		return fmt.Errorf("sensor init: %w", err)
	}
	defer src.Close()

	status := "Status: ERROR"
	if st.IsReady() {
		status = "Status: OK"
	}
	if err := sink.Render([]string{"Carbon Credit", "Monitor", "", status}); err != nil {
		logger.Warn("splash render failed", "error", err)
	}
	if err := clk.Sleep(ctx, splashHold); err != nil {
		return err
	}

	logger.Info("entering steady state",
		"state", mgr.State().String(),
		"period", cfg.CyclePeriod,
	)

	ctrl := cycle.New(src, sink, st, clk, logger, cfg.CyclePeriod)
	return ctrl.Run(ctx)
}
