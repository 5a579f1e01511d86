package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingCleaner struct {
	runs atomic.Int32
	err  error
}

func (c *countingCleaner) Run(ctx context.Context) (int64, error) {
	c.runs.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 2, nil
}

func TestCounterCleanupSchedulerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultCounterCleanupSchedulerConfig().Validate())
	assert.NoError(t, CounterCleanupSchedulerConfig{Enabled: false}.Validate())

	err := CounterCleanupSchedulerConfig{Enabled: true, Timeout: time.Second}.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = CounterCleanupSchedulerConfig{Enabled: true, Interval: time.Second}.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCounterCleanupScheduler_Lifecycle(t *testing.T) {
	cleaner := &countingCleaner{}
	s, err := NewCounterCleanupScheduler(cleaner, zap.NewNop(), CounterCleanupSchedulerConfig{
		Enabled:    true,
		Interval:   10 * time.Millisecond,
		Timeout:    time.Second,
		RunOnStart: true,
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	assert.Eventually(t, func() bool { return cleaner.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	stopped := cleaner.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, cleaner.runs.Load())
}

func TestCounterCleanupScheduler_Disabled(t *testing.T) {
	cleaner := &countingCleaner{}
	s, err := NewCounterCleanupScheduler(cleaner, nil, CounterCleanupSchedulerConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.TriggerImmediate(context.Background()), ErrSchedulerNotRunning)
	assert.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, cleaner.runs.Load())
}

func TestCounterCleanupScheduler_TriggerImmediate(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db down")}
	s, err := NewCounterCleanupScheduler(cleaner, zap.NewNop(), CounterCleanupSchedulerConfig{
		Enabled:  true,
		Interval: time.Hour,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.TriggerImmediate(context.Background()))
	assert.Eventually(t, func() bool { return cleaner.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

type blockingCleaner struct {
	running, peak atomic.Int32
	release       chan struct{}
}

func (c *blockingCleaner) Run(ctx context.Context) (int64, error) {
	n := c.running.Add(1)
	defer c.running.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	select {
	case <-c.release:
	case <-ctx.Done():
	}
	return 0, nil
}

func TestCounterCleanupScheduler_RunsNeverOverlap(t *testing.T) {
	cleaner := &blockingCleaner{release: make(chan struct{})}
	s, err := NewCounterCleanupScheduler(cleaner, nil, CounterCleanupSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		Timeout:    time.Second,
		RunOnStart: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return cleaner.running.Load() == 1 }, time.Second, time.Millisecond)
	for range 5 {
		require.NoError(t, s.TriggerImmediate(context.Background()))
	}
	close(cleaner.release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(1), cleaner.peak.Load())
	assert.ErrorIs(t, s.TriggerImmediate(context.Background()), ErrSchedulerNotRunning)
}
