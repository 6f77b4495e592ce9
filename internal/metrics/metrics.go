package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Page statuses
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder collects per-run scrape metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	products    *prometheus.CounterVec
	clicks      *prometheus.CounterVec
	pages       *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewRecorder creates a new Recorder instance
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		products: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopscrape_products_total",
				Help: "Total number of products extracted.",
			},
			[]string{"file"},
		),
		clicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopscrape_load_more_clicks_total",
				Help: "Total number of successful load-more clicks.",
			},
			[]string{"file"},
		),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopscrape_pages_total",
				Help: "Total number of listing pages processed.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shopscrape_page_duration_seconds",
				Help:    "Histogram of listing page scrape durations.",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120},
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopscrape_last_success_timestamp_seconds",
				Help: "Unix time of the last successfully written listing.",
			},
		),
	}

	r.registry.MustRegister(r.products, r.clicks, r.pages, r.duration, r.lastSuccess)
	return r
}

// RecordPage records a scraped and saved listing
func (r *Recorder) RecordPage(file string, clicks, products int, duration time.Duration) {
	r.pages.WithLabelValues(StatusOK).Inc()
	r.clicks.WithLabelValues(file).Add(float64(clicks))
	r.products.WithLabelValues(file).Add(float64(products))
	r.duration.Observe(duration.Seconds())
	r.lastSuccess.SetToCurrentTime()
}

// RecordFailure records a listing that could not be scraped or saved
func (r *Recorder) RecordFailure(duration time.Duration) {
	r.pages.WithLabelValues(StatusFailed).Inc()
	r.duration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the node-exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
