package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	quotesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	clipsTotal  *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	factorRatio *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		quotesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fareflex_quotes_total",
				Help: "Total number of priced quotes",
			},
			[]string{"route", "confidence"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fareflex_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		clipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fareflex_price_clips_total",
				Help: "Quotes where the adjustment hit a safety bound",
			},
			[]string{"direction"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fareflex_last_quoted_price",
				Help: "Last quoted dynamic price per route",
			},
			[]string{"route"},
		),
		factorRatio: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fareflex_factor_ratio",
				Help: "Last raw adjustment ratio per pricing factor",
			},
			[]string{"factor"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fareflex_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordQuote counts a priced quote by route and confidence label.
func (r *Recorder) RecordQuote(route, confidence string) {
	r.quotesTotal.WithLabelValues(route, confidence).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFinalPrice records the last quoted price for a route.
func (r *Recorder) RecordFinalPrice(route string, price float64) {
	r.lastPrice.WithLabelValues(route).Set(price)
}

// RecordFactor records the raw ratio a pricing factor produced.
func (r *Recorder) RecordFactor(factor string, ratio float64) {
	r.factorRatio.WithLabelValues(factor).Set(ratio)
}

// RecordClip counts a quote clipped at the price floor or ceiling.
func (r *Recorder) RecordClip(direction string) {
	r.clipsTotal.WithLabelValues(direction).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
