//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func bootstrap(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("IT_BOOTSTRAP")
	if addr == "" {
		addr = "127.0.0.1:19092"
	}
	deadline := time.Now().Add(60 * time.Second)
	for {
		c, err := net.DialTimeout("tcp", addr, 1500*time.Millisecond)
		if err == nil {
			_ = c.Close()
			return addr
		}
		if time.Now().After(deadline) {
			t.Fatalf("[it] kafka not reachable at %s: %v", addr, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestFailureEvents_RoundTrip(t *testing.T) {
	addr := bootstrap(t)
	log := zaptest.NewLogger(t)
	topic := "pinmon.it." + uuid.NewString()[:8]

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	require.NoError(t, EnsureTopic(ctx, []string{addr}, TopicSpec{Name: topic}, log))

	prod := NewProducer([]string{addr}, topic, log)
	sink := NewFailureEvents(prod, log)
	defer func() { _ = sink.Close() }()

	ev := event()
	require.NoError(t, sink.Capture(ctx, ev))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{addr},
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MaxBytes:    10e6,
	})
	defer r.Close()

	msg, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var rec FailureRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec))
	assert.Equal(t, string(msg.Key), rec.ID)
	assert.Equal(t, ev.Check.URL, rec.URL)
	assert.Equal(t, "status_mismatch", rec.Outcome)
	assert.Equal(t, 503, rec.Code)
}
