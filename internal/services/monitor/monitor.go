package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/run"
	"github.com/NordCoder/pinmon/internal/obs"
	"github.com/NordCoder/pinmon/internal/services/scheduler"
)

const DefaultPollInterval = time.Second

var ErrStopping = errors.New("monitor is shutting down")

type Config struct {
	// PollInterval paces the drain loop after the schedulers exit.
	PollInterval time.Duration
}

// Monitor owns one scheduler per period and the shutdown sequence:
// stop launching, wait for the schedulers, then wait for in-flight checks.
type Monitor struct {
	log     *zap.Logger
	state   *run.State
	runners []*scheduler.Runner
	cfg     Config

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(log *zap.Logger, groups []check.PeriodGroup, exec run.Executor, state *run.State, cfg Config) (*Monitor, error) {
	if len(groups) == 0 {
		return nil, errors.New("monitor: no period groups")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	base := log
	log = obs.Component(log, "monitor")

	runners := make([]*scheduler.Runner, 0, len(groups))
	for _, g := range groups {
		r, err := scheduler.New(base, g, exec, state)
		if err != nil {
			return nil, fmt.Errorf("monitor: %w", err)
		}
		log.Info("configured checks",
			zap.Int("checks", len(g.Instances)),
			zap.Duration("period", g.Period),
		)
		runners = append(runners, r)
	}

	return &Monitor{
		log:     log,
		state:   state,
		runners: runners,
		cfg:     cfg,
		stopped: make(chan struct{}),
	}, nil
}

// Stop requests shutdown. Safe to call any number of times.
func (m *Monitor) Stop() {
	if m.state.Stop() {
		m.log.Info("shutdown requested")
	}
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Health is the /healthz probe: healthy until shutdown is requested.
func (m *Monitor) Health(context.Context) error {
	if m.state.Stopping() {
		return fmt.Errorf("%w: %d checks in flight", ErrStopping, m.state.InFlight())
	}
	return nil
}

// Run blocks until ctx is done (or Stop is called) and every launched
// check has finished. There is no drain deadline.
func (m *Monitor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.stopped:
		}
		cancel()
	}()

	var g errgroup.Group
	for _, r := range m.runners {
		g.Go(func() error { return r.Run(runCtx) })
	}
	err := g.Wait()

	m.Stop()
	m.drain()
	return err
}

func (m *Monitor) drain() {
	tick := time.NewTicker(m.cfg.PollInterval)
	defer tick.Stop()

	for {
		n := m.state.InFlight()
		if n == 0 {
			m.log.Info("all checks finished")
			return
		}
		m.log.Info("waiting for in-flight checks", zap.Int64("in_flight", n))
		<-tick.C
	}
}
