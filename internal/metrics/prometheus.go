package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsEmitted counts persisted alert records by type and condition.
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pondwatch_alerts_emitted_total",
			Help: "Total number of alert records created",
		},
		[]string{"type", "condition"},
	)

	// AlertsSuppressed counts evaluations dropped by the rate limiter or
	// the on-change policy.
	AlertsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pondwatch_alerts_suppressed_total",
			Help: "Total number of alert emissions suppressed",
		},
		[]string{"reason"},
	)

	// SweepDeletions counts records removed by the retention sweeper.
	SweepDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pondwatch_sweep_deletions_total",
			Help: "Total number of alert records deleted by retention sweeps",
		},
		[]string{"reason"}, // expired | over_cap
	)

	// PondCondition is the current aggregate condition
	// (0 = normal, 1 = warning, 2 = danger).
	PondCondition = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pondwatch_pond_condition",
			Help: "Current aggregate pond condition (0 normal, 1 warning, 2 danger)",
		},
	)

	// SensorValue is the latest reading per metric.
	SensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pondwatch_sensor_value",
			Help: "Latest sensor reading per metric",
		},
		[]string{"metric"},
	)

	// LiveSubscribers is the number of connected websocket surfaces.
	LiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pondwatch_live_subscribers",
			Help: "Number of currently connected live-view subscribers",
		},
	)

	// StoreErrors counts non-fatal store failures the pipeline absorbed.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pondwatch_store_errors_total",
			Help: "Total number of tolerated notification store errors",
		},
		[]string{"operation"},
	)
)
