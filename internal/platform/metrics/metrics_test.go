package metrics

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestCollectorBuckets(t *testing.T) {
	c := New()
	c.Record(http.StatusOK, 10*time.Millisecond)
	c.Record(http.StatusConflict, 20*time.Millisecond)
	c.Record(http.StatusInternalServerError, 30*time.Millisecond)
	c.AttemptRecorded()
	c.IntegrityWarnings(3)
	c.IntegrityWarnings(-1)

	snap := c.Snapshot()
	checks := map[string]uint64{
		"requestsTotal":          3,
		"clientErrorsTotal":      1,
		"errorsTotal":            1,
		"conflictsTotal":         1,
		"totalDurationMs":        60,
		"attemptsRecordedTotal":  1,
		"integrityWarningsTotal": 3,
	}
	for key, want := range checks {
		if got := snap[key].(uint64); got != want {
			t.Fatalf("%s: expected %d, got %d", key, want, got)
		}
	}
	if avg := snap["avgDurationMs"].(float64); avg != 20 {
		t.Fatalf("expected avg 20, got %v", avg)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(http.StatusOK, time.Millisecond)
		}()
	}
	wg.Wait()
	if got := c.Snapshot()["requestsTotal"].(uint64); got != 50 {
		t.Fatalf("expected 50 requests, got %d", got)
	}
}
