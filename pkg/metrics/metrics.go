package metrics

import (
	"errors"

	custom_error "fieldstock/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Ledger counts ledger and workflow operations by outcome. A nil *Ledger
// records nothing.
type Ledger struct {
	operations *prometheus.CounterVec
}

func NewLedger(reg prometheus.Registerer) *Ledger {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldstock_ledger_operations_total",
			Help: "Ledger and transfer workflow operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	reg.MustRegister(operations)

	return &Ledger{operations: operations}
}

func (l *Ledger) Observe(operation string, err error) {
	if l == nil {
		return
	}
	l.operations.WithLabelValues(operation, Outcome(err)).Inc()
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, custom_error.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, custom_error.ErrConflict):
		return "conflict"
	case errors.Is(err, custom_error.ErrNotFound):
		return "not_found"
	case errors.Is(err, custom_error.ErrValidation):
		return "validation"
	case errors.Is(err, custom_error.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

// HTTP holds the request collectors used by the metrics middleware.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldstock_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldstock_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	reg.MustRegister(requests, duration)

	return &HTTP{Requests: requests, Duration: duration}
}
