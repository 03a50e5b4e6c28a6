package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfer_portal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transfer_portal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfer_portal",
			Name:      "booking_created_total",
			Help:      "Bookings created by trip type.",
		},
		[]string{"trip_type"},
	)

	bookingStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfer_portal",
			Name:      "booking_status_change_total",
			Help:      "Booking status changes by new status.",
		},
		[]string{"status"},
	)

	pricingRowsImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfer_portal",
			Name:      "pricing_rows_imported_total",
			Help:      "Cab rate rows imported by mode.",
		},
		[]string{"mode"},
	)

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transfer_portal",
			Name:      "auth_failures_total",
			Help:      "Failed authentications by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingCreated, bookingStatus, pricingRowsImported, authFailures)
	})
}

func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func IncBookingCreated(tripType string) {
	bookingCreated.WithLabelValues(tripType).Inc()
}

func IncBookingStatus(status string) {
	bookingStatus.WithLabelValues(status).Inc()
}

func AddPricingRowsImported(mode string, n int) {
	pricingRowsImported.WithLabelValues(mode).Add(float64(n))
}

func IncAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}
