package stream

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the driver and the hub.
type Metrics struct {
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	bodies       prometheus.Gauge
	clients      prometheus.Gauge
	frames       *prometheus.CounterVec
	frameBytes   prometheus.Counter
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orrery_ticks_total",
				Help: "Total number of system ticks",
			},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orrery_tick_duration_seconds",
				Help:    "Time spent advancing every body and repacking the buffer",
				Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
			},
		),
		bodies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_bodies",
				Help: "Number of bodies in the system",
			},
		),
		clients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_clients",
				Help: "Number of connected frame consumers",
			},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_frames_total",
				Help: "Frames handed to consumers, by outcome",
			},
			[]string{"outcome"},
		),
		frameBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orrery_frame_bytes_total",
				Help: "Total bytes of frames queued to consumers",
			},
		),
	}
	reg.MustRegister(m.ticks, m.tickDuration, m.bodies, m.clients, m.frames, m.frameBytes)
	return m
}

// RecordTick records one tick of a system of n bodies.
func (m *Metrics) RecordTick(n int, duration time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(duration.Seconds())
	m.bodies.Set(float64(n))
}

// RecordFrame records the outcome of handing a frame to one consumer.
func (m *Metrics) RecordFrame(sent bool, size int) {
	if !sent {
		m.frames.WithLabelValues("dropped").Inc()
		return
	}
	m.frames.WithLabelValues("sent").Inc()
	m.frameBytes.Add(float64(size))
}

// SetClients sets the number of connected consumers.
func (m *Metrics) SetClients(n int) {
	m.clients.Set(float64(n))
}
