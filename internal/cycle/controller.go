// Package cycle owns the steady-state loop: sample, derive, render, report,
// and best-effort persist, one cycle at a time.
package cycle

import (
	"context"
	"log/slog"
	"time"

	"carbonmon/internal/clock"
	"carbonmon/internal/display"
	"carbonmon/internal/metrics"
	"carbonmon/internal/sensor"
	"carbonmon/internal/store"
)

// Controller runs the fixed-period observation loop. All collaborators are
// injected; the controller holds no state of its own between cycles beyond
// the wiring. It is idle between cycles and never overlaps two cycles.
type Controller struct {
	source sensor.Source
	sink   display.Sink
	store  store.Client
	clk    clock.Clock
	logger *slog.Logger
	period time.Duration
}

func New(source sensor.Source, sink display.Sink, st store.Client, clk clock.Clock, logger *slog.Logger, period time.Duration) *Controller {
	return &Controller{
		source: source,
		sink:   sink,
		store:  st,
		clk:    clk,
		logger: logger,
		period: period,
	}
}

// Run cycles until ctx is done. Each cycle is followed by the fixed period
// sleep; the sleep is the only suspension point.
func (c *Controller) Run(ctx context.Context) error {
	for {
		c.RunCycle()
		if err := c.clk.Sleep(ctx, c.period); err != nil {
			return err
		}
	}
}

// RunCycle executes one complete cycle. Every step's failure is isolated:
// the display and the diagnostic line always happen, the store write is the
// only step gated on connectivity, and a failed write is logged and dropped.
// No outcome of this cycle affects the next one.
func (c *Controller) RunCycle() {
	co2Raw := c.source.Read(sensor.ChannelCO2)
	humidityRaw := c.source.Read(sensor.ChannelHumidity)

	credits, emissions, offsetOK := metrics.Derive(co2Raw, humidityRaw)

	obs := Observation{
		CO2Raw:      co2Raw,
		HumidityRaw: humidityRaw,
		Credits:     credits,
		Emissions:   emissions,
		OffsetOK:    offsetOK,
		Timestamp:   c.clk.Millis(),
	}

	if err := c.sink.Render(obs.DisplayLines()); err != nil {
		c.logger.Warn("display render failed", "error", err)
	}

	// The diagnostic line is the only record left if the write fails, so it
	// is emitted before any store interaction.
	c.logger.Info("cycle",
		"co2", obs.CO2Raw,
		"humidity", obs.HumidityRaw,
		"credits", obs.Credits,
		"emissions", obs.Emissions,
		"offset", obs.OffsetOK,
		"ts_ms", obs.Timestamp,
	)

	if !c.store.IsReady() {
		c.logger.Warn("store not ready, observation not persisted")
		return
	}

	rec := store.Record{
		CO2:       obs.CO2Raw,
		Humidity:  obs.HumidityRaw,
		Credits:   obs.Credits,
		Emissions: obs.Emissions,
		Offset:    obs.OffsetOK,
		Timestamp: obs.Timestamp,
	}
	path := obs.Path()
	if err := c.store.Write(path, rec); err != nil {
		c.logger.Error("observation write failed, dropped", "path", path, "error", err)
		return
	}
	c.logger.Info("observation written", "path", path)
}
