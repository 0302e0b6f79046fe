package gatekeep

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricSignupSuccess)
	m.Inc(MetricSignupSuccess)
	m.Inc(MetricLoginFailure)
	m.Observe(MetricLoginLatency, 3*time.Millisecond)
	m.Observe(MetricLoginLatency, 700*time.Millisecond)

	if got := m.Value(MetricSignupSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snapshot := m.Snapshot()
	if got := snapshot.Counters[MetricLoginFailure]; got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	buckets := snapshot.Histograms[MetricLoginLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	if buckets[0] != 1 {
		t.Fatalf("expected 3ms sample in first bucket, got %v", buckets)
	}
	if buckets[len(buckets)-1] != 1 {
		t.Fatalf("expected 700ms sample in +Inf bucket, got %v", buckets)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricSignupSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)

	if got := m.Value(MetricSignupSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	snapshot := m.Snapshot()
	if len(snapshot.Counters) != 0 && snapshot.Counters[MetricSignupSuccess] != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricLoginSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricLoginSuccess); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}
