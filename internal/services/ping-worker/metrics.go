package ping_worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmon_check_outcomes_total", Help: "Finished checks by outcome",
	}, []string{"outcome", "scheme"})
	mDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pinmon_check_duration_seconds",
		Help:    "Wall time of one check execution",
		Buckets: prometheus.DefBuckets,
	}, []string{"scheme"})
	mSinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinmon_sink_errors_total", Help: "Failure events the sink could not take",
	})
)
