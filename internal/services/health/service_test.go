package health

import (
	"testing"

	"contract-console/internal/shared/metrics"
)

type fixedCount int

func (f fixedCount) Len() int { return int(f) }

func TestStatus(t *testing.T) {
	got := NewService(fixedCount(3), "http://backend:8000").Status()
	if got["ok"] != true || got["sessions"] != 3 || got["backend"] != "http://backend:8000" {
		t.Fatalf("unexpected status: %v", got)
	}

	if _, ok := NewService(nil, "").Status()["sessions"]; ok {
		t.Fatalf("sessions should be omitted without a counter")
	}
}

func TestStatusReportsSkippedPollTicks(t *testing.T) {
	metrics.IncPollTickSkipped()
	got := NewService(nil, "").Status()["poll_ticks_skipped"]
	n, ok := got.(uint64)
	if !ok || n == 0 {
		t.Fatalf("expected a positive skipped tick count, got %v", got)
	}
	if n != metrics.PollTicksSkipped() {
		t.Fatalf("expected %d, got %d", metrics.PollTicksSkipped(), n)
	}
}
