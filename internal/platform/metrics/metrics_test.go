package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)
	c.RecordJob("salary_generation", false)
	c.RecordJob("salary_generation", true)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if snap["avgDurationMs"].(float64) != 14 {
		t.Fatalf("expected avg 14ms, got %v", snap["avgDurationMs"])
	}
	jobs := snap["jobs"].(map[string]JobCounts)
	if jobs["salary_generation"].Completed != 1 || jobs["salary_generation"].Failed != 1 {
		t.Fatalf("unexpected job counts: %+v", jobs)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.RecordJob("x", false)
}
