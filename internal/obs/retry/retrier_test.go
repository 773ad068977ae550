package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noWait struct{}

func (noWait) Next(int) time.Duration { return 0 }

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	}, Policy{Name: "test_ok", Attempts: 5, Backoff: noWait{}})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_Exhausts(t *testing.T) {
	calls := 0
	var exhausted error
	sentinel := errors.New("down")
	err := Do(context.Background(), func() error {
		calls++
		return sentinel
	}, Policy{
		Name:      "test_exhaust",
		Attempts:  3,
		Backoff:   noWait{},
		OnExhaust: func(err error) { exhausted = err },
	})

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, exhausted, sentinel)
	assert.Equal(t, 3, calls)
}

func TestDo_NotRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return context.Canceled
	}, SinkPolicy("test_policy", nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("fail")
	}, Policy{Name: "test_cancel", Attempts: 5, Backoff: ExpoJitter{Base: time.Hour}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestExpoJitter_Caps(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 100*time.Millisecond, b.Next(0))
	assert.Equal(t, 400*time.Millisecond, b.Next(2))
	assert.Equal(t, time.Second, b.Next(10))
	assert.Equal(t, 100*time.Millisecond, b.Next(-1))
}

func TestDo_PermanentStops(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad payload")
	err := Do(context.Background(), func() error {
		calls++
		return Permanent(sentinel)
	}, Policy{Name: "test_permanent", Attempts: 5, Backoff: noWait{}})

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}
