// Package metrics defines Prometheus instrumentation for the safety pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nuzum"

var (
	// ChecksCreated counts safety checks submitted through the external API.
	ChecksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "safety_checks_created_total",
		Help:      "Total number of safety checks created.",
	})

	// ImagesUploaded counts images accepted by the upload endpoint.
	ImagesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_uploaded_total",
		Help:      "Total number of safety check images uploaded.",
	})

	// ImagesNormalized counts images that went through the normalizer,
	// labeled by outcome.
	ImagesNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_normalized_total",
		Help:      "Total number of images processed by the normalizer.",
	}, []string{"outcome"})

	// NormalizeBytesSaved tracks bytes reclaimed by normalization and sweeps.
	NormalizeBytesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalize_bytes_saved_total",
		Help:      "Total bytes saved by image normalization.",
	})

	// ReportsGenerated counts accident report PDFs composed.
	ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accident_reports_generated_total",
		Help:      "Total number of accident report PDFs generated.",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)
