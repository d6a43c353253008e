package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelita_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_bookings_created_total",
			Help: "Bookings durably persisted",
		},
	)

	BookingDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_booking_duplicates_total",
			Help: "Booking submissions answered from an idempotency claim",
		},
	)

	ReconcileRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_reconcile_runs_total",
			Help: "Completed reconciliation runs",
		},
	)

	ReconcileScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_reconcile_records_scanned_total",
			Help: "Package records scanned by reconciliation",
		},
	)

	ReconcileRepaired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_reconcile_records_repaired_total",
			Help: "Package records repaired by reconciliation",
		},
	)

	ReconcileUnrepaired = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "travelita_reconcile_unrepaired_records",
			Help: "Records with unresolvable ownership as of the last run",
		},
	)

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelita_store_op_seconds",
			Help:    "Duration of document store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelita_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
