// Package metrics exports review engine telemetry to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for engine operations.
type Observer interface {
	RecordReview(mode string, degraded bool, err error)
	RecordGatewayCall(op string, duration time.Duration, err error)
	RecordRebuild(outcome string, err error)
	RecordConflict(op string)
}

// PrometheusObserver exports engine metrics to Prometheus.
type PrometheusObserver struct {
	reviews         *prometheus.CounterVec
	degraded        prometheus.Counter
	gatewayDuration *prometheus.HistogramVec
	gatewayErrors   *prometheus.CounterVec
	rebuilds        *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
}

// NewPrometheusObserver registers the engine metrics on reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "spaced_review"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	observer := &PrometheusObserver{
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Reviews scheduled, by review mode and result.",
		}, []string{"mode", "result"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adaptive_degraded_total",
			Help:      "Adaptive schedules that fell back to the simple schedule.",
		}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_duration_seconds",
			Help:      "Latency of persistence gateway calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		gatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Failed persistence gateway calls.",
		}, []string{"operation"}),
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rebuilds_total",
			Help:      "Priority order rebuild requests, by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_conflicts_total",
			Help:      "Priority order saves rejected because the stored order moved.",
		}, []string{"operation"}),
	}
	collectors := []prometheus.Collector{
		observer.reviews, observer.degraded, observer.gatewayDuration,
		observer.gatewayErrors, observer.rebuilds, observer.conflicts,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("register review metric: %w", err)
		}
	}
	return observer, nil
}

func (o *PrometheusObserver) RecordReview(mode string, degraded bool, err error) {
	if o == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.reviews.WithLabelValues(mode, result).Inc()
	if degraded {
		o.degraded.Inc()
	}
}

func (o *PrometheusObserver) RecordGatewayCall(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.gatewayErrors.WithLabelValues(op).Inc()
	}
}

func (o *PrometheusObserver) RecordRebuild(outcome string, err error) {
	if o == nil {
		return
	}
	if err != nil {
		outcome = "error"
	}
	o.rebuilds.WithLabelValues(outcome).Inc()
}

func (o *PrometheusObserver) RecordConflict(op string) {
	if o == nil {
		return
	}
	o.conflicts.WithLabelValues(op).Inc()
}

// Nop returns an Observer that records nothing.
func Nop() Observer { return nopObserver{} }

type nopObserver struct{}

func (nopObserver) RecordReview(string, bool, error) {}

func (nopObserver) RecordGatewayCall(string, time.Duration, error) {}

func (nopObserver) RecordRebuild(string, error) {}

func (nopObserver) RecordConflict(string) {}
