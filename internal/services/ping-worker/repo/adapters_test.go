package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NordCoder/pinmon/internal/domain/failure"
)

type countingSink struct {
	n       int
	err     error
	flushed bool
}

func (c *countingSink) Capture(context.Context, failure.Event) error {
	c.n++
	return c.err
}

func (c *countingSink) Flush(time.Duration) bool {
	c.flushed = true
	return c.err == nil
}

func TestSinks_DeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	a, b := &countingSink{err: boom}, &countingSink{}
	s := Sinks{a, nil, b}

	err := s.Capture(context.Background(), failure.Event{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)

	assert.False(t, s.Flush(time.Second))
	assert.True(t, a.flushed)
	assert.True(t, b.flushed)
}

func TestSinks_EmptyIsNoop(t *testing.T) {
	var s Sinks
	assert.NoError(t, s.Capture(context.Background(), failure.Event{}))
	assert.True(t, s.Flush(time.Millisecond))
	assert.NoError(t, Discard{}.Capture(context.Background(), failure.Event{}))
}
