package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/pinmon/internal/config/monitor"
	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/failure"
	"github.com/NordCoder/pinmon/internal/domain/run"
	"github.com/NordCoder/pinmon/internal/obs"
	"github.com/NordCoder/pinmon/internal/repository/kafka"
	"github.com/NordCoder/pinmon/internal/repository/sentry"
	"github.com/NordCoder/pinmon/internal/services/monitor"
	pingworker "github.com/NordCoder/pinmon/internal/services/ping-worker"
	workerrepo "github.com/NordCoder/pinmon/internal/services/ping-worker/repo"
	"github.com/NordCoder/pinmon/internal/services/resolver"
)

const defaultConfigPath = "config/monitor.yaml"

func configPath() string {
	if p := os.Getenv("MONITOR_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

func main() {
	os.Exit(runMain())
}

func runMain() (code int) {
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Read(configPath())
	if err != nil {
		log.Print(err)
		return 1
	}

	// logger
	l, err := obs.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	// sinks
	sink, closeSinks, err := buildSinks(root, cfg, l)
	if err != nil {
		l.Error("sink init", zap.Error(err))
		return 1
	}
	defer closeSinks()

	defer func() {
		if r := recover(); r != nil {
			fault(root, l, sink, cfg, fmt.Errorf("panic: %v", r), debug.Stack())
			code = 1
		}
	}()

	groups, err := resolve(cfg, resolver.Resolver{})
	if err != nil {
		fault(root, l, sink, cfg, err, nil)
		return 1
	}

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTELConfig())
	if err != nil {
		fault(root, l, sink, cfg, fmt.Errorf("otel init: %w", err), nil)
		return 1
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// wiring
	rootCAs, err := pingworker.LoadRootCAs(cfg.HTTP.CAFile)
	if err != nil {
		fault(root, l, sink, cfg, err, nil)
		return 1
	}
	httpc := pingworker.New(pingworker.Config{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		RootCAs:   rootCAs,
	})
	exec := pingworker.NewExecutor(l, httpc, sink, cfg.HTTP.MaxBodyBytes)

	state := run.NewState()
	mon, err := monitor.New(l, groups, exec, state, monitor.Config{PollInterval: cfg.Shutdown.PollInterval})
	if err != nil {
		fault(root, l, sink, cfg, err, nil)
		return 1
	}

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, mon.Health, l)

	// start
	if err := mon.Run(root); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("monitor error", zap.Error(err))
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	if !sink.Flush(cfg.Sentry.FlushTimeout) {
		l.Warn("sink flush timed out")
	}
	l.Info("bye")
	return 0
}

func resolve(cfg *config.Config, targets check.Resolver) ([]check.PeriodGroup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	return targets.Resolve(defs)
}

func buildSinks(ctx context.Context, cfg *config.Config, l *zap.Logger) (failure.Sink, func(), error) {
	st, err := sentry.New(sentry.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.App.Version,
	})
	if err != nil {
		return nil, nil, err
	}
	sinks := workerrepo.Sinks{st}
	closeFn := func() {}

	if cfg.Kafka.Enable {
		if cfg.Kafka.EnsureTopic {
			_ = kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, kafka.TopicSpec{Name: cfg.Kafka.Topic}, l)
		}
		events := kafka.NewFailureEvents(kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, l), l)
		sinks = append(sinks, events)
		closeFn = func() { _ = events.Close() }
	}
	return sinks, closeFn, nil
}

// fault logs a startup or top-level error and makes sure it reaches the sink
// before the process exits.
func fault(ctx context.Context, l *zap.Logger, sink failure.Sink, cfg *config.Config, err error, stack []byte) {
	fields := []zap.Field{zap.Error(err)}
	if stack != nil {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	l.Error("fatal", fields...)

	_ = sink.Capture(context.WithoutCancel(ctx), failure.Event{
		Kind:  run.KindFault,
		Err:   err,
		At:    time.Now().UTC(),
		Stack: stack,
	})
	sink.Flush(cfg.Sentry.FlushTimeout)
}
