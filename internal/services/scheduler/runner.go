package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/run"
	"github.com/NordCoder/pinmon/internal/obs"
)

var ErrNoChecks = errors.New("scheduler: period has no checks")

// Runner spreads the checks of one period evenly over the period window and
// launches them forever, until the shared state is stopped.
type Runner struct {
	log   *zap.Logger
	group check.PeriodGroup
	exec  run.Executor
	state *run.State

	// shuffle reorders the launch list in place, once per Run.
	shuffle func([]check.Instance)
}

func New(log *zap.Logger, group check.PeriodGroup, exec run.Executor, state *run.State) (*Runner, error) {
	if len(group.Instances) == 0 {
		return nil, fmt.Errorf("%w: period %s", ErrNoChecks, group.Period)
	}
	if group.Period <= 0 {
		return nil, fmt.Errorf("scheduler: non-positive period %s", group.Period)
	}
	return &Runner{
		log:   obs.Component(log, "scheduler").With(zap.Duration("period", group.Period)),
		group: group,
		exec:  exec,
		state: state,
		shuffle: func(list []check.Instance) {
			rand.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
		},
	}, nil
}

func (r *Runner) Group() check.PeriodGroup { return r.group }

// Run returns nil once the stopping flag is observed or ctx is done.
// Launched checks are never cancelled here.
func (r *Runner) Run(ctx context.Context) error {
	order := make([]check.Instance, len(r.group.Instances))
	copy(order, r.group.Instances)
	r.shuffle(order)

	interval := r.group.Interval()
	r.log.Info("interval between checks",
		zap.Duration("interval", interval),
		zap.Int("checks", len(order)),
	)

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		for _, inst := range order {
			if r.state.Stopping() {
				return nil
			}
			if err := limiter.Wait(ctx); err != nil {
				r.log.Debug("wait interrupted", zap.Error(err))
				return nil
			}
			if r.state.Stopping() {
				return nil
			}
			r.launch(ctx, inst)
		}
	}
}

func (r *Runner) launch(ctx context.Context, inst check.Instance) {
	r.state.Begin()
	mInFlight.Inc()
	mLaunched.WithLabelValues(r.group.Period.String()).Inc()

	checkCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				mFaults.Inc()
				r.log.Error("check execution panicked",
					zap.String("check", inst.String()),
					zap.Any("panic", p),
					zap.ByteString("stack", debug.Stack()),
				)
			}
			r.state.End()
			mInFlight.Dec()
		}()
		r.exec.Execute(checkCtx, inst)
	}()
}
