package in

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// Lock and request gauges/counters the /metrics endpoint serves, scraped
// fresh from the table-lock manager on every request rather than updated
// on a ticker: holder/waiter counts are cheap to recompute and a stale
// gauge between scrapes would be actively misleading for an operator
// diagnosing contention.
var (
	lockHolders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_table_lock_holders",
			Help: "Current write-lock holders per table id.",
		},
		[]string{"table_id"},
	)

	lockWaiters = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_table_lock_waiters",
			Help: "Current write-lock waiters per table id.",
		},
		[]string{"table_id"},
	)

	lockWaitSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_table_lock_wait_seconds",
			Help: "p50/p99 observed wait time for a table's write lock.",
		},
		[]string{"table_id", "quantile"},
	)

	// HTTPRequestsTotal is registered and exported; no handler or middleware
	// in this tree increments it.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_http_requests_total",
			Help: "Total HTTP requests served, by route and status class.",
		},
		[]string{"route", "status"},
	)

	// RowsProcessedTotal is incremented by the import handler under the
	// "import" operation label; exports do not increment it.
	RowsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_rows_processed_total",
			Help: "Total rows imported or exported, by operation.",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(lockHolders, lockWaiters, lockWaitSeconds, HTTPRequestsTotal, RowsProcessedTotal)
}

// MetricsHandler serves /metrics: the lock gauges are refreshed from the
// live table-lock manager, then the whole registry is rendered in the
// Prometheus text exposition format.
type MetricsHandler struct {
	Query *query.UseCase
}

// Metrics refreshes the lock gauges from the current table-lock snapshot
// and delegates to the standard Prometheus handler for everything else.
func (handler *MetricsHandler) Metrics(c *fiber.Ctx) error {
	if handler.Query.Locks != nil {
		snapshot := handler.Query.Locks.Snapshot()

		lockHolders.Reset()
		lockWaiters.Reset()
		lockWaitSeconds.Reset()

		for id, n := range snapshot.HoldersByID {
			lockHolders.WithLabelValues(id).Set(float64(n))
		}

		for id, n := range snapshot.WaitersByID {
			lockWaiters.WithLabelValues(id).Set(float64(n))
		}

		for id, v := range snapshot.P50WaitSeconds {
			lockWaitSeconds.WithLabelValues(id, "0.5").Set(v)
		}

		for id, v := range snapshot.P99WaitSeconds {
			lockWaitSeconds.WithLabelValues(id, "0.99").Set(v)
		}
	}

	return adaptor.HTTPHandler(promhttp.Handler())(c)
}
