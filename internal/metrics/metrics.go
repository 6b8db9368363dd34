// Package metrics exposes Prometheus collectors for the upload, extraction and order flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scanorder"

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Uploaded files by outcome (stored, skipped, failed).",
	}, []string{"outcome"})

	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extractions_total",
		Help:      "Text extractions by engine and status.",
	}, []string{"engine", "status"})

	extractionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Time spent rendering and recognizing a single upload.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"engine"})

	ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_orders_total",
		Help:      "Simulated sales orders by purchase order validity.",
	}, []string{"valid"})
)

// Upload outcomes.
const (
	UploadStored  = "stored"
	UploadSkipped = "skipped"
	UploadFailed  = "failed"
)

// RecordUpload counts one uploaded file.
func RecordUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordExtraction counts one extraction and observes its duration.
func RecordExtraction(engine, status string, took time.Duration) {
	extractionsTotal.WithLabelValues(engine, status).Inc()
	extractionSeconds.WithLabelValues(engine).Observe(took.Seconds())
}

// RecordSubmission counts one simulated sales order.
func RecordSubmission(valid bool) {
	ordersTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
