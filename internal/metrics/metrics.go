// Package metrics provides Prometheus metrics for the ingestion pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	OutcomeValid    = "valid"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
)

var (
	// Upload metrics
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_uploads_total",
			Help: "Uploads by data type and outcome",
		},
		[]string{"data_type", "outcome"},
	)

	UploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_upload_bytes_total",
			Help: "Bytes read from uploaded files",
		},
		[]string{"data_type"},
	)

	RowsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_rows_parsed_total",
			Help: "Data rows parsed from uploads",
		},
		[]string{"data_type"},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_validation_errors_total",
			Help: "Validation errors reported, by stage",
		},
		[]string{"data_type", "stage"},
	)

	UploadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_uploads_active",
			Help: "Uploads currently holding a processing slot",
		},
	)

	// Import metrics
	RecordsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_records_imported_total",
			Help: "Domain records handed to the store",
		},
		[]string{"data_type"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_store_errors_total",
			Help: "Failed batch writes",
		},
		[]string{"data_type"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"stage"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// ObserveStage records the time since start under the given stage name.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordRequest records one finished HTTP request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
