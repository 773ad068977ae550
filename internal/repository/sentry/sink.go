package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/NordCoder/pinmon/internal/domain/failure"
)

type Options struct {
	DSN         string
	Environment string
	Release     string
	// BeforeSend may inspect or drop events before they leave the process.
	BeforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
}

// Sink reports failures as sentry exceptions. An empty DSN gives a client
// that silently drops everything.
type Sink struct {
	hub *sentry.Hub
}

var _ failure.Sink = (*Sink)(nil)

func New(opts Options) (*Sink, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		BeforeSend:       opts.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &Sink{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sink) Capture(_ context.Context, ev failure.Event) error {
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("outcome", ev.Kind.String())
		if ev.Code != 0 {
			scope.SetTag("http.status_code", fmt.Sprint(ev.Code))
		}
		if c := ev.Check; c != nil {
			scope.SetTag("check.host", c.Host)
			scope.SetTag("check.ip", c.IP.String())
			scope.SetContext("check", sentry.Context{
				"url":           c.URL,
				"scheme":        c.Scheme,
				"ip":            c.IP.String(),
				"expected_code": c.Code,
				"period":        c.Period.String(),
			})
		}
		if len(ev.Stack) > 0 {
			scope.SetContext("fault", sentry.Context{"stack": string(ev.Stack)})
		}
		if !ev.At.IsZero() {
			scope.AddEventProcessor(func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				e.Timestamp = ev.At
				return e
			})
		}
	})

	err := ev.Err
	if err == nil {
		err = errors.New(ev.Message())
	}
	hub.CaptureException(err)
	return nil
}

func (s *Sink) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
