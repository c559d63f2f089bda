// Package metrics exposes Prometheus instrumentation for the engine.
// Counters and histograms are fed from the event bus, so the server and
// store stay free of metrics code.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/resolvent/resolvent/internal/eventbus"
	events "github.com/resolvent/resolvent/internal/events"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolvent_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resolvent_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	GraphQLOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolvent_graphql_operations_total",
			Help: "Total number of GraphQL operations executed",
		},
		[]string{"type", "outcome"},
	)

	GraphQLOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resolvent_graphql_operation_duration_seconds",
			Help:    "Duration of GraphQL operation execution in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"type"},
	)

	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolvent_store_ops_total",
			Help: "Total number of data store operations",
		},
		[]string{"op", "kind", "outcome"},
	)
)

// Register attaches the event bus subscribers that feed the metrics above.
// Call it once at startup, after eventbus.Use.
func Register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		HTTPRequestsTotal.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
		HTTPRequestDuration.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		op := e.OperationType
		if op == "" {
			op = "unknown"
		}
		outcome := "ok"
		if len(e.Errors) > 0 {
			outcome = "error"
		}
		GraphQLOperationsTotal.WithLabelValues(op, outcome).Inc()
		GraphQLOperationDuration.WithLabelValues(op).Observe(e.Duration.Seconds())
	})

	eventbus.Subscribe(func(ctx context.Context, e events.StoreOp) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		StoreOpsTotal.WithLabelValues(e.Op, e.Kind, outcome).Inc()
	})
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
