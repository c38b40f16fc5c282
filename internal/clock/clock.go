package clock

import (
	"context"
	"time"
)

// Clock abstracts the passage of time so that retry loops and the cycle
// period can be tested without real waiting.
type Clock interface {
	// Millis returns monotonic milliseconds since the clock was created.
	Millis() int64
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type monotonic struct {
	start time.Time
}

// NewMonotonic returns a Clock anchored at the moment of the call, which for
// the device's purposes is "boot".
func NewMonotonic() Clock {
	return &monotonic{start: time.Now()}
}

func (m *monotonic) Millis() int64 {
	return time.Since(m.start).Milliseconds()
}

func (m *monotonic) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
