package ping_worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/failure"
	"github.com/NordCoder/pinmon/internal/domain/run"
	"github.com/NordCoder/pinmon/internal/obs"
)

const DefaultMaxBodyBytes = 10 << 20

var ErrPatternNotFound = errors.New("pattern not found in response body")

type StatusError struct {
	Got  int
	Want int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d, want %d", e.Got, e.Want)
}

// Executor runs a single check instance and classifies the result.
// Every failure is logged and handed to the sink.
type Executor struct {
	log     *zap.Logger
	http    HTTPGetter
	sink    failure.Sink
	maxBody int64
	tracer  trace.Tracer
}

var _ run.Executor = (*Executor)(nil)

func NewExecutor(log *zap.Logger, http HTTPGetter, sink failure.Sink, maxBody int64) *Executor {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Executor{
		log:     obs.Component(log, "executor"),
		http:    http,
		sink:    sink,
		maxBody: maxBody,
		tracer:  obs.Tracer("executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, inst check.Instance) (out run.Outcome) {
	ctx, span := e.tracer.Start(ctx, "check.execute", trace.WithAttributes(
		attribute.String("check.url", inst.URL),
		attribute.String("check.ip", inst.IP.String()),
		attribute.Int("check.expected_code", inst.Code),
	))
	defer span.End()

	log := obs.WithTrace(ctx, e.log).With(
		zap.String("url", inst.URL),
		zap.String("ip", inst.IP.String()),
	)
	log.Info("check")

	start := time.Now()
	var stack []byte
	defer func() {
		if r := recover(); r != nil {
			stack = debug.Stack()
			out = run.Outcome{Kind: run.KindFault, Err: fmt.Errorf("check panicked: %v", r)}
		}
		out.Duration = time.Since(start)

		mOutcomes.WithLabelValues(out.Kind.String(), inst.Scheme).Inc()
		mDuration.WithLabelValues(inst.Scheme).Observe(out.Duration.Seconds())
		span.SetAttributes(
			attribute.String("check.outcome", out.Kind.String()),
			attribute.Int("http.status_code", out.Code),
		)

		if !out.Failed() {
			log.Debug("check ok", zap.Int("code", out.Code), zap.Duration("elapsed", out.Duration))
			return
		}
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Kind.String())
		e.report(ctx, log, inst, out, stack)
	}()

	return e.probe(ctx, inst)
}

func (e *Executor) probe(ctx context.Context, inst check.Instance) run.Outcome {
	resp, err := e.http.Get(ctx, inst.URL, inst.IP, inst.Options)
	if err != nil {
		return run.Outcome{Kind: run.KindTransport, Err: fmt.Errorf("get %s via %s: %w", inst.URL, inst.IP, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != inst.Code {
		return run.Outcome{
			Kind: run.KindStatusMismatch,
			Code: resp.StatusCode,
			Err:  &StatusError{Got: resp.StatusCode, Want: inst.Code},
		}
	}
	if inst.Pattern == nil {
		return run.Outcome{Kind: run.KindSuccess, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return run.Outcome{Kind: run.KindTransport, Code: resp.StatusCode, Err: fmt.Errorf("read body of %s via %s: %w", inst.URL, inst.IP, err)}
	}
	if !inst.Pattern.Match(body) {
		return run.Outcome{
			Kind: run.KindPatternMismatch,
			Code: resp.StatusCode,
			Err:  fmt.Errorf("%w: %q in %d bytes", ErrPatternNotFound, inst.Pattern.String(), len(body)),
		}
	}
	return run.Outcome{Kind: run.KindSuccess, Code: resp.StatusCode}
}

// report never lets a misbehaving sink escape into the scheduler.
func (e *Executor) report(ctx context.Context, log *zap.Logger, inst check.Instance, out run.Outcome, stack []byte) {
	defer func() {
		if r := recover(); r != nil {
			mSinkErrors.Inc()
			log.Error("sink panicked", zap.Any("panic", r))
		}
	}()

	fields := []zap.Field{
		zap.String("outcome", out.Kind.String()),
		zap.Int("code", out.Code),
		zap.Duration("elapsed", out.Duration),
		zap.Error(out.Err),
	}
	if stack != nil {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	log.Error("check failed", fields...)

	if e.sink == nil {
		return
	}
	ev := failure.Event{
		Check: &inst,
		Kind:  out.Kind,
		Code:  out.Code,
		Err:   out.Err,
		At:    time.Now().UTC(),
		Stack: stack,
	}
	if err := e.sink.Capture(ctx, ev); err != nil {
		mSinkErrors.Inc()
		log.Warn("sink capture failed", zap.Error(err))
	}
}
