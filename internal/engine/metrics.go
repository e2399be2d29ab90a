package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics, registered on the default Prometheus registry.
var (
	// runsTotal counts finished runs by outcome (ok, invalid_config, cancelled, error).
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contagion_runs_total",
		Help: "Total simulation runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contagion_run_duration_seconds",
		Help:    "Wall-clock duration of completed simulation runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contagion_ticks_total",
		Help: "Total simulation ticks executed",
	})

	newInfectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contagion_new_infections_total",
		Help: "Total healthy-to-infected transitions",
	})

	recoveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contagion_recoveries_total",
		Help: "Total infected-to-immunized transitions",
	})
)

const (
	outcomeOK            = "ok"
	outcomeInvalidConfig = "invalid_config"
	outcomeCancelled     = "cancelled"
	outcomeError         = "error"
)
