package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goGuard.MetricsSnapshot
	dropped  map[string]uint64
	pending  int64
}

func (f fakeSource) MetricsSnapshot() goGuard.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDroppedByType() map[string]uint64    { return f.dropped }
func (f fakeSource) PendingRemoteLogouts() int64              { return f.pending }

func TestCollectorCountersAndHistogram(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricDecisionForceLogout: 7,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricDecideLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: map[string]uint64{"force_logout": 2, "session_established": 1},
		pending: 3,
	})

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	expected := `
# HELP goguard_decision_force_logout_total Navigations that forced a logout.
# TYPE goguard_decision_force_logout_total counter
goguard_decision_force_logout_total 7
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "goguard_decision_force_logout_total"); err != nil {
		t.Fatalf("unexpected counter output: %v", err)
	}

	expected = `
# HELP goguard_audit_dropped_total Audit events dropped due to dispatcher backpressure, by event type.
# TYPE goguard_audit_dropped_total counter
goguard_audit_dropped_total{event_type="force_logout"} 2
goguard_audit_dropped_total{event_type="session_established"} 1
# HELP goguard_remote_logout_pending Detached remote logout calls that have not returned.
# TYPE goguard_remote_logout_pending gauge
goguard_remote_logout_pending 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "goguard_audit_dropped_total", "goguard_remote_logout_pending"); err != nil {
		t.Fatalf("unexpected audit or pending output: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "goguard_decide_latency_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 36 {
			t.Fatalf("expected 36 samples, got %d", h.GetSampleCount())
		}
		if got := h.GetBucket()[0].GetCumulativeCount(); got != 1 {
			t.Fatalf("expected first bucket 1, got %d", got)
		}
		return
	}
	t.Fatal("histogram family missing")
}

func TestCollectorSkipsAbsentHistogram(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{snapshot: goGuard.MetricsSnapshot{
		Counters:   map[goGuard.MetricID]uint64{},
		Histograms: map[goGuard.MetricID][]uint64{},
	}})
	if n := testutil.CollectAndCount(c, "goguard_decide_latency_seconds"); n != 0 {
		t.Fatalf("expected no histogram series, got %d", n)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	h, err := Handler(fakeSource{snapshot: goGuard.MetricsSnapshot{
		Counters:   map[goGuard.MetricID]uint64{goGuard.MetricSessionEstablished: 1},
		Histograms: map[goGuard.MetricID][]uint64{},
	}})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "goguard_session_established_total 1") {
		t.Fatalf("expected established counter, got:\n%s", body)
	}
}
