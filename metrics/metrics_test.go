package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observe(t *testing.T) {
	c := New("test")

	c.Observe("GET", OutcomeOK, 10*time.Millisecond)
	c.Observe("GET", OutcomeOK, 20*time.Millisecond)
	c.Observe("POST", OutcomeServiceError, time.Millisecond)

	if got := testutil.ToFloat64(c.Requests().WithLabelValues("GET", OutcomeOK)); got != 2 {
		t.Errorf("GET ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Requests().WithLabelValues("POST", OutcomeServiceError)); got != 1 {
		t.Errorf("POST service_error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Requests().WithLabelValues("POST", OutcomeOK)); got != 0 {
		t.Errorf("POST ok = %v, want 0", got)
	}
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New("test")
	if err := c.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}

	c.Observe("PUT", OutcomeTransportError, time.Second)

	expected := `
# HELP test_requests_total Outgoing calls by method and outcome.
# TYPE test_requests_total counter
test_requests_total{method="PUT",outcome="transport_error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
	if n := testutil.CollectAndCount(c, "test_request_duration_seconds"); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestNew_DefaultNamespace(t *testing.T) {
	c := New("")
	c.Observe("GET", OutcomeOK, 0)
	if n := testutil.CollectAndCount(c, "ternary_requests_total"); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}
