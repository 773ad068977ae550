package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NordCoder/pinmon/internal/domain/failure"
	"github.com/NordCoder/pinmon/internal/obs"
	"github.com/NordCoder/pinmon/internal/obs/retry"
)

// FailureRecord is the JSON body of one published failure.
type FailureRecord struct {
	ID           string    `json:"id"`
	URL          string    `json:"url,omitempty"`
	Scheme       string    `json:"scheme,omitempty"`
	Host         string    `json:"host,omitempty"`
	IP           string    `json:"ip,omitempty"`
	Period       string    `json:"period,omitempty"`
	ExpectedCode int       `json:"expected_code,omitempty"`
	Outcome      string    `json:"outcome"`
	Code         int       `json:"code,omitempty"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

func NewFailureRecord(ev failure.Event) FailureRecord {
	rec := FailureRecord{
		ID:      uuid.NewString(),
		Outcome: ev.Kind.String(),
		Code:    ev.Code,
		Error:   ev.Message(),
		At:      ev.At,
	}
	if c := ev.Check; c != nil {
		rec.URL = c.URL
		rec.Scheme = c.Scheme
		rec.Host = c.Host
		rec.IP = c.IP.String()
		rec.Period = c.Period.String()
		rec.ExpectedCode = c.Code
	}
	return rec
}

// FailureEvents publishes every captured failure to a topic.
type FailureEvents struct {
	p      *Producer
	policy retry.Policy
}

var _ failure.Sink = (*FailureEvents)(nil)

func NewFailureEvents(p *Producer, log *zap.Logger) *FailureEvents {
	return &FailureEvents{
		p:      p,
		policy: retry.SinkPolicy("kafka", obs.Component(log, "kafka.failures")),
	}
}

func (e *FailureEvents) Capture(ctx context.Context, ev failure.Event) error {
	rec := NewFailureRecord(ev)
	key := []byte(rec.ID)
	return retry.Do(ctx, func() error {
		return e.p.PublishJSON(ctx, key, rec)
	}, e.policy)
}

// Flush is a no-op: the writer is synchronous, Capture returns after the
// broker acknowledged the message.
func (e *FailureEvents) Flush(time.Duration) bool { return true }

func (e *FailureEvents) Close() error { return e.p.Close() }
