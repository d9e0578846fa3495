// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderreport_reports_generated_total",
		Help: "Report generation attempts by profile and outcome.",
	}, []string{"profile", "outcome"})

	OrdersFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderreport_orders_fetched_total",
		Help: "Orders received from the upstream order list.",
	})

	RowsExported = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderreport_report_rows",
		Help:    "Rows written per report.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderreport_fetch_duration_seconds",
		Help:    "Time spent fetching the upstream order list.",
		Buckets: prometheus.DefBuckets,
	})

	BatchesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderreport_janitor_removed_total",
		Help: "Reports and batches removed by the janitor.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
