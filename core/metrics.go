package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the render core's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Frames         prometheus.Counter
	FramesDropped  prometheus.Counter
	Resizes        prometheus.Counter
	ResizeFailures prometheus.Counter
	TextureUploads prometheus.Counter
	TickSeconds    prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "ripple_frames_total",
			Help: "Frames presented",
		}),
		FramesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ripple_frames_dropped_total",
			Help: "Frames dropped because a pass failed",
		}),
		Resizes: f.NewCounter(prometheus.CounterOpts{
			Name: "ripple_resizes_total",
			Help: "Render target reallocations",
		}),
		ResizeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ripple_resize_failures_total",
			Help: "Render target reallocations that failed and were skipped",
		}),
		TextureUploads: f.NewCounter(prometheus.CounterOpts{
			Name: "ripple_texture_uploads_total",
			Help: "Texture source uploads",
		}),
		TickSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ripple_tick_seconds",
			Help:    "Time spent in one frame tick",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

func (m *Metrics) frame() {
	if m != nil {
		m.Frames.Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.FramesDropped.Inc()
	}
}

func (m *Metrics) resized(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Resizes.Inc()
	} else {
		m.ResizeFailures.Inc()
	}
}

func (m *Metrics) uploaded() {
	if m != nil {
		m.TextureUploads.Inc()
	}
}

func (m *Metrics) tick(seconds float64) {
	if m != nil {
		m.TickSeconds.Observe(seconds)
	}
}
