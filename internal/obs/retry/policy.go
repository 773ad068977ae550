package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// SinkPolicy is used when delivering failure events to an external sink.
// Checks themselves are never retried.
func SinkPolicy(name string, log *zap.Logger) Policy {
	return Policy{
		Name:     name,
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 100 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("sink delivery retry", zap.String("sink", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("sink delivery retries exhausted", zap.String("sink", name), zap.Error(err))
			}
		},
	}
}
