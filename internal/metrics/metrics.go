package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareloop",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareloop",
			Name:      "bookings_created_total",
			Help:      "Bookings created in WAITING status.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareloop",
			Name:      "booking_decisions_total",
			Help:      "Owner decisions by outcome.",
		},
		[]string{"decision"},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareloop",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled by their booker.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingDecisions, bookingsCancelled)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingDecision counts an approve or reject outcome.
func IncBookingDecision(decision string) {
	bookingDecisions.WithLabelValues(decision).Inc()
}

func IncBookingCancelled() {
	bookingsCancelled.Inc()
}
