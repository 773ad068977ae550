package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/failure"
	"github.com/NordCoder/pinmon/internal/domain/run"
	"github.com/NordCoder/pinmon/internal/obs/retry"
)

type fakeWriter struct {
	mu       sync.Mutex
	msgs     []kafka.Message
	failures int
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func event() failure.Event {
	return failure.Event{
		Check: &check.Instance{
			URL:    "https://www.example.com/",
			Scheme: "https",
			Host:   "www.example.com",
			IP:     netip.MustParseAddr("4.3.2.1"),
			Code:   200,
			Period: time.Minute,
		},
		Kind: run.KindStatusMismatch,
		Code: 503,
		Err:  errors.New("unexpected status code 503, want 200"),
		At:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func fastPolicy(e *FailureEvents) {
	e.policy.Backoff = retry.ExpoJitter{Base: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestFailureEvents_Capture(t *testing.T) {
	w := &fakeWriter{}
	sink := NewFailureEvents(newProducer(w, "pinmon.checks.failed", zap.NewNop()), zap.NewNop())

	require.NoError(t, sink.Capture(context.Background(), event()))
	require.Len(t, w.msgs, 1)

	var rec FailureRecord
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &rec))
	assert.Equal(t, string(w.msgs[0].Key), rec.ID)
	assert.Equal(t, "https://www.example.com/", rec.URL)
	assert.Equal(t, "4.3.2.1", rec.IP)
	assert.Equal(t, "status_mismatch", rec.Outcome)
	assert.Equal(t, 503, rec.Code)
	assert.Equal(t, 200, rec.ExpectedCode)
	assert.Equal(t, "1m0s", rec.Period)
	assert.Contains(t, rec.Error, "503")

	assert.True(t, sink.Flush(time.Second))
	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestFailureEvents_RetriesDelivery(t *testing.T) {
	w := &fakeWriter{failures: 2}
	sink := NewFailureEvents(newProducer(w, "t", zap.NewNop()), zap.NewNop())
	fastPolicy(sink)

	require.NoError(t, sink.Capture(context.Background(), event()))
	assert.Len(t, w.msgs, 1)
}

func TestFailureEvents_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	sink := NewFailureEvents(newProducer(w, "t", zap.NewNop()), zap.NewNop())
	fastPolicy(sink)

	require.Error(t, sink.Capture(context.Background(), event()))
	assert.Empty(t, w.msgs)
}

func TestNewFailureRecord_WithoutCheck(t *testing.T) {
	rec := NewFailureRecord(failure.Event{Kind: run.KindFault, Err: errors.New("boom")})
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "fault", rec.Outcome)
	assert.Equal(t, "boom", rec.Error)
	assert.Empty(t, rec.URL)
}

func TestProducer_MarshalErrorIsPermanent(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "t", zap.NewNop())

	err := p.PublishJSON(context.Background(), nil, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
	assert.Empty(t, w.msgs)
}
