package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	cacheHit       = "hit"
	cacheMiss      = "miss"
	cacheRemoteHit = "remote_hit"
)

// Metrics holds the collectors reported on /metrics.
type Metrics struct {
	detections *prometheus.CounterVec
	latency    prometheus.Histogram
	cache      *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. Collectors already present
// in reg are reused so several servers can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	detections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codeswitch",
			Name:      "detections_total",
			Help:      "Detections served, by verdict.",
		},
		[]string{"verdict"},
	)
	latency := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "codeswitch",
			Name:      "detection_duration_seconds",
			Help:      "Time spent classifying one text, cache hits included.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)
	cache := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codeswitch",
			Name:      "cache_requests_total",
			Help:      "Result cache lookups, by outcome.",
		},
		[]string{"result"},
	)

	var err error
	if detections, err = register(reg, detections); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if cache, err = register(reg, cache); err != nil {
		return nil, err
	}
	return &Metrics{detections: detections, latency: latency, cache: cache}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(verdict string, d time.Duration) {
	if m == nil {
		return
	}
	m.detections.WithLabelValues(verdict).Inc()
	m.latency.Observe(d.Seconds())
}

func (m *Metrics) cacheLookup(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
