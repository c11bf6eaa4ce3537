package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionBidi = "bidi"
	directionUni  = "uni"
)

// Metrics collects adapter-level counters. All observation paths are
// nil-receiver safe, so instrumentation is strictly opt-in.
type Metrics struct {
	StreamsAccepted *prometheus.CounterVec
	StreamsOpened   *prometheus.CounterVec
	ChunksReordered prometheus.Counter
	ReorderDepth    prometheus.Gauge
	BytesReceived   prometheus.Counter
	BytesSent       prometheus.Counter
}

// NewMetrics creates and registers the adapter metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StreamsAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicpoll",
			Name:      "streams_accepted_total",
			Help:      "Incoming streams accepted, by direction.",
		}, []string{"direction"}),
		StreamsOpened: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicpoll",
			Name:      "streams_opened_total",
			Help:      "Outgoing streams opened, by direction.",
		}, []string{"direction"}),
		ChunksReordered: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quicpoll",
			Name:      "chunks_reordered_total",
			Help:      "Chunks that arrived ahead of the stream cursor and were buffered.",
		}),
		ReorderDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicpoll",
			Name:      "reorder_buffer_depth",
			Help:      "Chunks currently parked in reorder buffers.",
		}),
		BytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quicpoll",
			Name:      "bytes_received_total",
			Help:      "Bytes yielded to callers in cursor order.",
		}),
		BytesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quicpoll",
			Name:      "bytes_sent_total",
			Help:      "Bytes flushed into the transport.",
		}),
	}
}

func (m *Metrics) streamAccepted(direction string) {
	if m == nil {
		return
	}
	m.StreamsAccepted.WithLabelValues(direction).Inc()
}

func (m *Metrics) streamOpened(direction string) {
	if m == nil {
		return
	}
	m.StreamsOpened.WithLabelValues(direction).Inc()
}

func (m *Metrics) chunkReordered(depth int) {
	if m == nil {
		return
	}
	m.ChunksReordered.Inc()
	m.ReorderDepth.Set(float64(depth))
}

func (m *Metrics) chunkDrained(depth int) {
	if m == nil {
		return
	}
	m.ReorderDepth.Set(float64(depth))
}

func (m *Metrics) bytesYielded(n int) {
	if m == nil {
		return
	}
	m.BytesReceived.Add(float64(n))
}

func (m *Metrics) bytesSent(n int) {
	if m == nil {
		return
	}
	m.BytesSent.Add(float64(n))
}
