// Package metrics concentra os coletores Prometheus do acompanhamento
// de clientes. As métricas HTTP ficam no middleware.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	followUpCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_cycles_total",
			Help: "Total number of follow-up cycles by result",
		},
		[]string{"result"},
	)

	followUpActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_actions_total",
			Help: "Total number of follow-up contact attempts by outcome",
		},
		[]string{"outcome"},
	)

	followUpCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "followup_cycle_duration_seconds",
			Help:    "Duration of follow-up cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	followUpCyclesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followup_cycle_skipped_total",
			Help: "Triggers skipped because a cycle was already running",
		},
	)

	clientsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clients_registered_total",
			Help: "Total number of clients registered by origin",
		},
		[]string{"origin"},
	)

	stalePendingActions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "followup_stale_pending_actions",
			Help: "Pending actions older than one scheduler interval",
		},
	)
)

// RecordCycle registra um ciclo concluído. result: "success" ou "error".
func RecordCycle(result string, duration time.Duration, succeeded, failed int) {
	followUpCycles.WithLabelValues(result).Inc()
	followUpCycleDuration.Observe(duration.Seconds())
	followUpActions.WithLabelValues("delivered").Add(float64(succeeded))
	followUpActions.WithLabelValues("failed").Add(float64(failed))
}

func RecordCycleSkipped() {
	followUpCyclesSkipped.Inc()
}

func RecordClientRegistered(origin string) {
	clientsRegistered.WithLabelValues(origin).Inc()
}

func SetStalePendingActions(n int) {
	stalePendingActions.Set(float64(n))
}
