package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mLaunched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmon_checks_launched_total", Help: "Check executions launched by the schedulers",
	}, []string{"period"})
	mInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pinmon_checks_in_flight", Help: "Check executions started but not finished",
	})
	mFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinmon_scheduler_faults_total", Help: "Panics recovered around launched checks",
	})
)
