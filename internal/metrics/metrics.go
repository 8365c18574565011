package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gudang_transaction_batches_total",
			Help: "Stock transaction batches by kind and outcome (committed, rejected, failed)",
		},
		[]string{"kind", "outcome"},
	)

	StockMoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gudang_stock_moved_units_total",
			Help: "Units moved through committed ledger entries",
		},
		[]string{"kind"},
	)

	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gudang_import_rows_total",
			Help: "Spreadsheet rows folded into the catalog by outcome (created, merged, skipped)",
		},
		[]string{"outcome"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gudang_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gudang_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gudang_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
