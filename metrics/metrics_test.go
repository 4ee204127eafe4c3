package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRecord(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.SetInflightTasks(3)
	c.SetWaitQueued(2)
	c.IncTimeouts()
	c.IncMerges()
	c.IncHandlerErrors("normal")
	c.ObserveBandLatencyMS("normal", 12)

	if got := testutil.ToFloat64(c.inflightTasks); got != 3 {
		t.Fatalf("inflight_tasks = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.waitQueued); got != 2 {
		t.Fatalf("wait_candidates_queued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.timeouts); got != 1 {
		t.Fatalf("timeouts_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.merges); got != 1 {
		t.Fatalf("merges_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.handlerErrors.WithLabelValues("normal")); got != 1 {
		t.Fatalf("handler_exceptions_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.bandLatency); got != 1 {
		t.Fatalf("band_latency_ms series = %v, want 1", got)
	}
}

func TestCollectorsDisable(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.IncTimeouts()
	c.Disable()
	c.IncTimeouts()

	if got := testutil.ToFloat64(c.timeouts); got != 1 {
		t.Fatalf("disabled collectors must stop recording, got %v", got)
	}
}
