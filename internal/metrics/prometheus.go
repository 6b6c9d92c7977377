package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the stream probe
type Metrics struct {
	// Datagram metrics
	PacketsReceived prometheus.Counter
	PacketsValid    prometheus.Counter
	PacketsTooShort prometheus.Counter
	PacketsBadMagic prometheus.Counter
	BytesReceived   prometheus.Counter

	// Continuity metrics
	PacketsLost prometheus.Counter

	// Level metrics
	LevelDB      prometheus.Gauge
	PayloadBytes prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		PacketsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_packets_received_total",
			Help: "Total number of UDP datagrams received",
		}),
		PacketsValid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_packets_valid_total",
			Help: "Total number of well-formed Mix2Go frames received",
		}),
		PacketsTooShort: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_packets_too_short_total",
			Help: "Total number of datagrams shorter than a frame header",
		}),
		PacketsBadMagic: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_packets_bad_magic_total",
			Help: "Total number of datagrams with a magic mismatch",
		}),
		BytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_bytes_received_total",
			Help: "Total bytes received across all datagrams",
		}),
		PacketsLost: promauto.NewCounter(prometheus.CounterOpts{
			Name: "m2g_packets_lost_total",
			Help: "Total packets inferred lost from sequence gaps",
		}),
		LevelDB: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "m2g_level_db",
			Help: "Current running peak level in dBFS",
		}),
		PayloadBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "m2g_payload_bytes",
			Help:    "Audio payload size of valid frames in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10), // 64B to ~32KB
		}),
	}
}

// RecordDatagram records a received datagram of the given size
func (m *Metrics) RecordDatagram(size int) {
	m.PacketsReceived.Inc()
	m.BytesReceived.Add(float64(size))
}

// RecordValidFrame records a successfully decoded frame
func (m *Metrics) RecordValidFrame(payloadBytes int) {
	m.PacketsValid.Inc()
	m.PayloadBytes.Observe(float64(payloadBytes))
}

// RecordTooShort increments the too-short rejection counter
func (m *Metrics) RecordTooShort() {
	m.PacketsTooShort.Inc()
}

// RecordBadMagic increments the bad-magic rejection counter
func (m *Metrics) RecordBadMagic() {
	m.PacketsBadMagic.Inc()
}

// RecordLost adds newly detected lost packets
func (m *Metrics) RecordLost(n int64) {
	if n > 0 {
		m.PacketsLost.Add(float64(n))
	}
}

// SetLevelDB sets the current running peak level gauge
func (m *Metrics) SetLevelDB(db float64) {
	m.LevelDB.Set(db)
}
