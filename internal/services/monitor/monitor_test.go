package monitor

import (
	"context"
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/run"
)

type blockingExecutor struct {
	started atomic.Int64
	release chan struct{}
}

func (b *blockingExecutor) Execute(context.Context, check.Instance) run.Outcome {
	b.started.Add(1)
	<-b.release
	return run.Outcome{Kind: run.KindSuccess, Code: 200}
}

func groups(periods ...time.Duration) []check.PeriodGroup {
	out := make([]check.PeriodGroup, 0, len(periods))
	for _, p := range periods {
		out = append(out, check.PeriodGroup{Period: p, Instances: []check.Instance{{
			URL: "http://example.test/", Scheme: "http", IP: netip.MustParseAddr("127.0.0.1"), Code: 200, Period: p,
		}}})
	}
	return out
}

func TestNew_Errors(t *testing.T) {
	_, err := New(zap.NewNop(), nil, &blockingExecutor{}, run.NewState(), Config{})
	require.Error(t, err)

	_, err = New(zap.NewNop(), []check.PeriodGroup{{Period: time.Second}}, &blockingExecutor{}, run.NewState(), Config{})
	require.Error(t, err)
}

func TestRun_DrainsInFlightBeforeReturning(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	exec := &blockingExecutor{release: make(chan struct{})}
	state := run.NewState()

	m, err := New(zap.New(core), groups(time.Hour, 2*time.Hour), exec, state, Config{PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return exec.started.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Health(context.Background()))

	cancel()
	require.Eventually(t, state.Stopping, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, m.Health(context.Background()), ErrStopping)

	select {
	case <-done:
		t.Fatal("Run returned while checks were in flight")
	case <-time.After(100 * time.Millisecond):
	}
	assert.EqualValues(t, 2, state.InFlight())

	close(exec.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after release")
	}
	assert.EqualValues(t, 0, state.InFlight())
	assert.EqualValues(t, 2, exec.started.Load())

	assert.Equal(t, 1, logs.FilterMessage("shutdown requested").Len())
	assert.Equal(t, 2, logs.FilterMessage("configured checks").Len())
	assert.Positive(t, logs.FilterMessage("waiting for in-flight checks").Len())
}

func TestStop_Idempotent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	exec := &blockingExecutor{release: make(chan struct{})}
	close(exec.release)

	m, err := New(zap.New(core), groups(time.Hour), exec, run.NewState(), Config{PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	require.Eventually(t, func() bool { return exec.started.Load() == 1 }, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
	m.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Equal(t, 1, logs.FilterMessage("shutdown requested").Len())
}
