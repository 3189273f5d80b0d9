package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shake819/remind-api/internal/testfixtures"
	"github.com/shake819/remind-api/pkg/logger"
)

type countingTicker struct {
	mu    sync.Mutex
	ticks int
	err   error
}

func (c *countingTicker) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.ticks++
	return nil
}

func (c *countingTicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestPulseRunsOncePerDay(t *testing.T) {
	ticker := &countingTicker{}
	clk := testfixtures.NewClockAt("2025-06-03")
	s := New(ticker, clk, quietLogger(), nil)
	ctx := context.Background()

	// Many pulses on the same calendar day collapse into one tick.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.pulse(ctx))
	}
	assert.Equal(t, 1, ticker.count())

	clk.SetDay("2025-06-04")
	require.NoError(t, s.pulse(ctx))
	assert.Equal(t, 2, ticker.count())
}

func TestRunNowForcesReevaluation(t *testing.T) {
	ticker := &countingTicker{}
	clk := testfixtures.NewClockAt("2025-06-03")
	s := New(ticker, clk, quietLogger(), nil)
	ctx := context.Background()

	require.NoError(t, s.pulse(ctx))
	require.NoError(t, s.pulse(ctx))
	assert.Equal(t, 1, ticker.count())

	require.NoError(t, s.RunNow(ctx))
	assert.Equal(t, 2, ticker.count())
}

func TestFailedTickRetriedOnNextPulse(t *testing.T) {
	ticker := &countingTicker{err: errors.New("store unavailable")}
	clk := testfixtures.NewClockAt("2025-06-03")
	s := New(ticker, clk, quietLogger(), nil)
	ctx := context.Background()

	require.Error(t, s.pulse(ctx))

	// The guard was cleared, so the next pulse on the same day retries.
	ticker.mu.Lock()
	ticker.err = nil
	ticker.mu.Unlock()

	require.NoError(t, s.pulse(ctx))
	assert.Equal(t, 1, ticker.count())
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&countingTicker{}, testfixtures.NewClockAt("2025-06-03"), quietLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := s.Start(ctx, "not a cron spec")
	assert.Error(t, err)
}
