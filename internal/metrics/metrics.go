// Package metrics groups the Prometheus collectors exported by the calculator.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector
const Namespace = "import_cost"

// Recompute outcomes
const (
	OutcomeOK       = "ok"
	OutcomeBlocked  = "blocked"
	OutcomeDegraded = "degraded"
)

// QuoteMetrics tracks recalculations of a session.
type QuoteMetrics struct {
	Recomputes *prometheus.CounterVec
	Flags      *prometheus.CounterVec
	Products   prometheus.Gauge
}

// NewQuoteMetrics registers and returns the calculation collectors.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &QuoteMetrics{
		Recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recomputes_total",
			Help:      "Recalculations by outcome.",
		}, []string{"outcome"}),
		Flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "flagged_fields_total",
			Help:      "Entry fields flagged as non-positive during recalculation.",
		}, []string{"field"}),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "products",
			Help:      "Number of entries in the ledger after the last recalculation.",
		}),
	}
	registerCounter(reg, &m.Recomputes)
	registerCounter(reg, &m.Flags)
	registerGauge(reg, &m.Products)
	return m
}

// ObserveRecompute records one recalculation outcome
func (m *QuoteMetrics) ObserveRecompute(outcome string, products int, flagged map[string]int) {
	if m == nil {
		return
	}
	m.Recomputes.WithLabelValues(outcome).Inc()
	if outcome == OutcomeBlocked {
		return
	}
	m.Products.Set(float64(products))
	for field, n := range flagged {
		m.Flags.WithLabelValues(field).Add(float64(n))
	}
}

// HTTPMetrics groups collectors for the JSON API.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
}

// NewHTTPMetrics registers and returns HTTP collectors.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"method", "route"}),
	}
	registerCounter(reg, &m.ReqTotal)
	registerHistogram(reg, &m.ReqDur)
	return m
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func registerCounter(reg prometheus.Registerer, c **prometheus.CounterVec) {
	if err := reg.Register(*c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(fmt.Errorf("register counter: %w", err))
		}
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			*c = existing
		}
	}
}

func registerHistogram(reg prometheus.Registerer, h **prometheus.HistogramVec) {
	if err := reg.Register(*h); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(fmt.Errorf("register histogram: %w", err))
		}
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			*h = existing
		}
	}
}

func registerGauge(reg prometheus.Registerer, g *prometheus.Gauge) {
	if err := reg.Register(*g); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(fmt.Errorf("register gauge: %w", err))
		}
		if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
			*g = existing
		}
	}
}
