package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.FramesSent.WithLabelValues("HELO").Inc()
	c.FramesReceived.WithLabelValues("serv").Inc()
	c.SessionState.Set(2)
	c.DiscoveryLookup.Observe(0.5)
	c.Reconnects.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"slimproto_frames_sent_total",
		"slimproto_frames_received_total",
		"slimproto_session_state",
		"slimproto_discovery_lookup_seconds",
		"slimproto_reconnects_total",
	} {
		if !names[want] {
			t.Errorf("missing metric family %q in %v", want, names)
		}
	}
}

func TestFramesSentLabeledByOpcode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.FramesSent.WithLabelValues("HELO").Inc()
	c.FramesSent.WithLabelValues("STAT").Inc()
	c.FramesSent.WithLabelValues("STAT").Inc()

	var m dto.Metric
	if err := c.FramesSent.WithLabelValues("STAT").Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetCounter().GetValue() != 2 {
		t.Fatalf("STAT counter = %v, want 2", m.GetCounter().GetValue())
	}
}
