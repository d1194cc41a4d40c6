package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegisterOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caja_register_operations_total",
		Help: "Register open/close attempts by operation and result",
	}, []string{"operation", "result"})

	CashMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caja_cash_movements_total",
		Help: "Cash movements recorded by kind and result",
	}, []string{"kind", "result"})

	SnapshotWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caja_snapshot_write_failures_total",
		Help: "Pre-close snapshot writes that failed (fail-soft)",
	})

	SummaryPollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caja_summary_poll_ticks_total",
		Help: "Summary poll ticks by outcome (refreshed, skipped, failed)",
	}, []string{"outcome"})

	SalesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caja_sales_submitted_total",
		Help: "Sale submissions by payment method and result",
	}, []string{"method", "result"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caja_backend_request_duration_seconds",
		Help:    "Latency of calls to the back-office backend",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "status"})
)

// Result traduce un error a la etiqueta usada en los contadores
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
