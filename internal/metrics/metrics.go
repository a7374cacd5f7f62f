package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that produced a result.
	OutcomeSuccess = "success"
	// OutcomeError labels operations that failed (degenerate fit, read error).
	OutcomeError = "error"
)

var (
	parsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invols",
			Name:      "parses_total",
			Help:      "Total number of exports parsed, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	droppedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "invols",
			Name:      "dropped_rows_total",
			Help:      "Data lines discarded while parsing exports.",
		},
	)

	fitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invols",
			Name:      "fits_total",
			Help:      "Total number of sensitivity fits, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	fitDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "invols",
			Name:      "fit_seconds",
			Help:      "Sensitivity fit latency in seconds, chart overlay included.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	sessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "invols",
			Name:      "sessions_open",
			Help:      "Recording sessions currently held in memory.",
		},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		parsesTotal,
		droppedRowsTotal,
		fitsTotal,
		fitDurationSeconds,
		sessionsOpen,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveParse records a parse outcome and the rows it dropped.
func ObserveParse(outcome string, dropped int) {
	parsesTotal.WithLabelValues(normalize(outcome)).Inc()
	if dropped > 0 {
		droppedRowsTotal.Add(float64(dropped))
	}
}

// ObserveFit records a fit duration and outcome label.
func ObserveFit(duration time.Duration, outcome string) {
	fitsTotal.WithLabelValues(normalize(outcome)).Inc()
	if duration < 0 {
		duration = 0
	}
	fitDurationSeconds.Observe(duration.Seconds())
}

// SetSessions reports the number of open sessions.
func SetSessions(n int) {
	sessionsOpen.Set(float64(n))
}

func normalize(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return outcome
}
