package server

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the schedule service on a
// registry of their own.
//
// Metrics:
//   - revisit_rpc_requests_total{procedure,code}
//   - revisit_rpc_duration_seconds{procedure}
//   - revisit_reviews_total{outcome}
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ReviewsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revisit_rpc_requests_total",
				Help: "Total number of RPC requests by procedure and result code",
			},
			[]string{"procedure", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "revisit_rpc_duration_seconds",
				Help:    "Duration of RPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		ReviewsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revisit_reviews_total",
				Help: "Total number of recorded reviews by outcome",
			},
			[]string{"outcome"}, // "success" or "failure"
		),
	}
}

// Interceptor counts and times every unary call.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.RequestsTotal.WithLabelValues(procedure, code).Inc()
			m.RequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

// ObserveReview is a no-op on a nil receiver.
func (m *Metrics) ObserveReview(successful bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if successful {
		outcome = "success"
	}
	m.ReviewsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
