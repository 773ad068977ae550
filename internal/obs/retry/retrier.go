package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Backoff interface {
	Next(attempt int) time.Duration
}

// ExpoJitter doubles Base per attempt up to Max, then spreads the result by
// ±Jitter (a fraction).
type ExpoJitter struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b ExpoJitter) Next(attempt int) time.Duration {
	attempt = max(attempt, 0)
	d := float64(b.Base) * math.Pow(2, float64(attempt))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*b.Jitter
	}
	return time.Duration(d)
}

type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

var (
	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmon_sink_delivery_attempts_total",
		Help: "Sink delivery attempts, including the final one.",
	}, []string{"sink"})
	retryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmon_sink_delivery_failed_total",
		Help: "Sink deliveries that gave up.",
	}, []string{"sink"})
	retryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pinmon_sink_delivery_duration_seconds",
		Help:    "Time spent delivering to a sink, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})
)

func (p Policy) label() string {
	if p.Name == "" {
		return "default"
	}
	return p.Name
}

func (p Policy) retryable(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if p.Retryable == nil {
		return err != nil
	}
	return p.Retryable(err)
}

// Do calls fn until it succeeds, the error is not retryable, the attempts
// run out or ctx is done.
func Do(ctx context.Context, fn func() error, p Policy) error {
	name := p.label()
	start := time.Now()
	defer func() { retryLatency.WithLabelValues(name).Observe(time.Since(start).Seconds()) }()

	attempts := max(p.Attempts, 1)
	span := trace.SpanFromContext(ctx)

	var err error
	for i := range attempts {
		err = fn()
		retryAttempts.WithLabelValues(name).Inc()
		if err == nil {
			return nil
		}
		if p.OnAttempt != nil {
			p.OnAttempt(i, err)
		}
		if span.IsRecording() {
			span.AddEvent("retry.attempt", trace.WithAttributes(
				attribute.String("retry.sink", name),
				attribute.Int("retry.attempt", i+1),
				attribute.String("retry.error", err.Error()),
			))
		}
		if !p.retryable(err) || i == attempts-1 {
			break
		}
		if p.Backoff == nil {
			continue
		}
		if werr := sleep(ctx, p.Backoff.Next(i)); werr != nil {
			return werr
		}
	}

	retryExhausted.WithLabelValues(name).Inc()
	if p.OnExhaust != nil {
		p.OnExhaust(err)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
