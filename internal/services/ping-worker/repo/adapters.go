package repo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NordCoder/pinmon/internal/domain/failure"
)

// Sinks fans one event out to every configured sink. A failing sink does not
// stop delivery to the others.
type Sinks []failure.Sink

var _ failure.Sink = Sinks(nil)

func (s Sinks) Capture(ctx context.Context, ev failure.Event) error {
	var errs []error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Capture(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes all sinks concurrently and reports whether all of them
// finished within timeout.
func (s Sinks) Flush(timeout time.Duration) bool {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok = true
	)
	for _, sink := range s {
		if sink == nil {
			continue
		}
		wg.Add(1)
		go func(sink failure.Sink) {
			defer wg.Done()
			if !sink.Flush(timeout) {
				mu.Lock()
				ok = false
				mu.Unlock()
			}
		}(sink)
	}
	wg.Wait()
	return ok
}

// Discard drops every event.
type Discard struct{}

func (Discard) Capture(context.Context, failure.Event) error { return nil }
func (Discard) Flush(time.Duration) bool                     { return true }
