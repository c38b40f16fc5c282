package link

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver reports the link up after a set number of IsUp polls.
type fakeDriver struct {
	upAfter        int
	polls          int
	associateCalls int
	associateErr   error
	resolverCalls  [][]string
	resolverErr    error
}

func (d *fakeDriver) Associate(ssid, password string) error {
	d.associateCalls++
	return d.associateErr
}

func (d *fakeDriver) IsUp() bool {
	d.polls++
	return d.polls > d.upAfter
}

func (d *fakeDriver) ConfigureResolver(servers ...string) error {
	d.resolverCalls = append(d.resolverCalls, servers)
	return d.resolverErr
}

// fakeClock counts sleeps and never actually waits.
type fakeClock struct {
	sleeps   int
	cancelAt int
	cancel   context.CancelFunc
}

func (c *fakeClock) Millis() int64 { return int64(c.sleeps) }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	if c.cancel != nil && c.sleeps >= c.cancelAt {
		c.cancel()
	}
	return ctx.Err()
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEstablish_RetriesUntilUp(t *testing.T) {
	driver := &fakeDriver{upAfter: 7}
	clk := &fakeClock{}
	m := NewManager(driver, clk, 300*time.Millisecond, discard())

	err := m.Establish(context.Background(), "lab-net", "secret")
	require.NoError(t, err)

	assert.Equal(t, 1, driver.associateCalls)
	assert.Equal(t, 7, clk.sleeps)
	assert.Equal(t, LinkUp, m.State())
}

func TestEstablish_ImmediateUpDoesNotSleep(t *testing.T) {
	driver := &fakeDriver{upAfter: 0}
	clk := &fakeClock{}
	m := NewManager(driver, clk, 300*time.Millisecond, discard())

	err := m.Establish(context.Background(), "lab-net", "secret")
	require.NoError(t, err)
	assert.Equal(t, 0, clk.sleeps)
}

func TestEstablish_AssociationErrorStillPolls(t *testing.T) {
	driver := &fakeDriver{upAfter: 2, associateErr: assert.AnError}
	clk := &fakeClock{}
	m := NewManager(driver, clk, 300*time.Millisecond, discard())

	err := m.Establish(context.Background(), "lab-net", "secret")
	require.NoError(t, err)
	assert.Equal(t, LinkUp, m.State())
}

func TestEstablish_EmptySSIDSkipsAssociation(t *testing.T) {
	driver := &fakeDriver{upAfter: 1}
	clk := &fakeClock{}
	m := NewManager(driver, clk, 300*time.Millisecond, discard())

	err := m.Establish(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, driver.associateCalls)
	assert.Equal(t, LinkUp, m.State())
}

func TestEstablish_CtxCancelStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	driver := &fakeDriver{upAfter: 1_000_000}
	clk := &fakeClock{cancelAt: 5, cancel: cancel}
	m := NewManager(driver, clk, 300*time.Millisecond, discard())

	err := m.Establish(ctx, "lab-net", "secret")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Disconnected, m.State())
	assert.Equal(t, 5, clk.sleeps)
}

func TestConfigureResolver_FailureDoesNotPanic(t *testing.T) {
	driver := &fakeDriver{resolverErr: assert.AnError}
	m := NewManager(driver, &fakeClock{}, time.Second, discard())

	m.ConfigureResolver("8.8.8.8", "8.8.4.4")

	require.Len(t, driver.resolverCalls, 1)
	assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, driver.resolverCalls[0])
}

func TestMarkStoreReady(t *testing.T) {
	m := NewManager(&fakeDriver{}, &fakeClock{}, time.Second, discard())

	// Not meaningful before the link is up.
	m.MarkStoreReady()
	assert.Equal(t, Disconnected, m.State())

	m.state = LinkUp
	m.MarkStoreReady()
	assert.Equal(t, StoreReady, m.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "link-up", LinkUp.String())
	assert.Equal(t, "store-ready", StoreReady.String())
}
