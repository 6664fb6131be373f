// Package metrics exposes Prometheus collectors for compression runs.
//
// Every Registry owns its own prometheus.Registry, so several compressors (or
// tests) never collide on metric names. All methods are no-ops on a nil
// *Registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Registry holds the compression metrics.
type Registry struct {
	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	ShardsTotal         prometheus.Counter
	FramesTotal         prometheus.Counter
	PixelsTotal         prometheus.Counter
	BytesTotal          prometheus.Counter
	FrameEncodeDuration prometheus.Histogram
	GeometryWarnings    prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfcomp_runs_total",
			Help: "Total number of compression runs by outcome",
		},
		[]string{"status"},
	)

	r.RunDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mfcomp_run_duration_seconds",
			Help:    "Wall time of a compression run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	r.ShardsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mfcomp_shards_total",
			Help: "Total number of shards encoded",
		},
	)

	r.FramesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mfcomp_frames_total",
			Help: "Total number of frames encoded",
		},
	)

	r.PixelsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mfcomp_pixels_selected_total",
			Help: "Total number of pixels written to sparse records",
		},
	)

	r.BytesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mfcomp_output_bytes_total",
			Help: "Total number of uncompressed multifile bytes produced",
		},
	)

	r.FrameEncodeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mfcomp_frame_encode_duration_seconds",
			Help:    "Time to read and encode one frame in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.GeometryWarnings = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mfcomp_geometry_mismatch_tolerated_total",
			Help: "Shards encoded at their own shape because geometry tolerance was enabled",
		},
	)

	return r
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}

	return r.registry
}

// RecordFrame records one encoded frame.
func (r *Registry) RecordFrame(pixels, bytes int, d time.Duration) {
	if r == nil {
		return
	}
	r.FramesTotal.Inc()
	r.PixelsTotal.Add(float64(pixels))
	r.BytesTotal.Add(float64(bytes))
	r.FrameEncodeDuration.Observe(d.Seconds())
}

// RecordHeader records the header bytes of a run.
func (r *Registry) RecordHeader(bytes int) {
	if r == nil {
		return
	}
	r.BytesTotal.Add(float64(bytes))
}

// RecordShard records one fully encoded shard.
func (r *Registry) RecordShard(tolerated bool) {
	if r == nil {
		return
	}
	r.ShardsTotal.Inc()
	if tolerated {
		r.GeometryWarnings.Inc()
	}
}

// RecordRun records the outcome of a run.
func (r *Registry) RecordRun(err error, d time.Duration) {
	if r == nil {
		return
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(d.Seconds())
}

// WriteTextfile writes the current metric values in the text exposition format,
// for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
