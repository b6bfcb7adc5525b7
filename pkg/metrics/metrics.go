// Package metrics wires optional Prometheus instrumentation into the
// session and discovery packages, grounded on the prometheus/client_golang
// usage in the runZeroInc TCP-introspection repos in the retrieval pack.
// A nil *Collectors disables instrumentation entirely so the core stays
// usable without a metrics server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles every metric the session and discovery packages
// populate.
type Collectors struct {
	FramesSent      *prometheus.CounterVec
	FramesReceived  *prometheus.CounterVec
	SessionState    prometheus.Gauge
	DiscoveryLookup prometheus.Histogram
	Reconnects      prometheus.Counter
}

// New registers and returns a fresh Collectors set against reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global
// registry; passing prometheus.DefaultRegisterer wires into the
// process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slimproto",
			Name:      "frames_sent_total",
			Help:      "Client-to-server frames sent, by opcode.",
		}, []string{"opcode"}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slimproto",
			Name:      "frames_received_total",
			Help:      "Server-to-client frames received, by opcode.",
		}, []string{"opcode"}),
		SessionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slimproto",
			Name:      "session_state",
			Help:      "Current session state (0=disconnected, 1=handshaking, 2=connected).",
		}),
		DiscoveryLookup: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slimproto",
			Name:      "discovery_lookup_seconds",
			Help:      "Time from the first broadcast to a valid discovery response.",
			Buckets:   prometheus.DefBuckets,
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slimproto",
			Name:      "reconnects_total",
			Help:      "Number of times the caller re-established a session.",
		}),
	}

	reg.MustRegister(c.FramesSent, c.FramesReceived, c.SessionState, c.DiscoveryLookup, c.Reconnects)
	return c
}
