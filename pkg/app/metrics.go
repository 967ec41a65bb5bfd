package app

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records dispatch counts and durations.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace. Register them before use.
func NewMetrics(namespace string) *Metrics {
	labels := []string{"controller", "action", "status"}
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "requests_total",
				Help:      "Number of dispatched requests by controller, action and status",
			},
			labels,
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "duration_seconds",
				Help:      "Time spent dispatching requests",
				Buckets:   prometheus.DefBuckets,
			},
			labels,
		),
	}
}

// Register registers the collectors with registerer, or the default registerer
// when nil.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Middleware observes every call with its final status.
func (m *Metrics) Middleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) error {
			start := time.Now()
			err := next(ctx, call)

			body, _ := call.Response.WireBody()
			controller, action := "none", "none"
			if call.Matched {
				controller, action = call.Route.Controller, call.Route.Action
			}
			status := strconv.Itoa(call.Response.WireStatus(body))

			m.requests.WithLabelValues(controller, action, status).Inc()
			m.duration.WithLabelValues(controller, action, status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
