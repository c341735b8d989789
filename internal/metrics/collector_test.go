package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, time.Minute)

	if c.statsProvider != provider {
		t.Error("statsProvider not stored")
	}
	if c.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", c.interval)
	}
	if c.stopChan == nil {
		t.Error("stopChan not initialized")
	}
}

func TestCollectWithNilProvider(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked with nil provider: %v", r)
		}
	}()
	NewCollector(nil, time.Minute).collect()
}

func TestCollectUpdatesBatchGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		Images:     5,
		Assigned:   3,
		Unassigned: 2,
		TotalBytes: 4096,
		Processing: true,
	}}
	NewCollector(provider, time.Minute).collect()

	if got := testutil.ToFloat64(BatchImages.WithLabelValues("assigned")); got != 3 {
		t.Errorf("assigned gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(BatchImages.WithLabelValues("unassigned")); got != 2 {
		t.Errorf("unassigned gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(BatchBytes); got != 4096 {
		t.Errorf("bytes gauge = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(ExportInProgress); got != 1 {
		t.Errorf("export gauge = %v, want 1", got)
	}

	provider.stats.Processing = false
	NewCollector(provider, time.Minute).collect()
	if got := testutil.ToFloat64(ExportInProgress); got != 0 {
		t.Errorf("export gauge = %v after export, want 0", got)
	}
}

func TestCollectorStartStop(_ *testing.T) {
	c := NewCollector(&mockStatsProvider{}, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestInitializeMetricsIdempotent(t *testing.T) {
	InitializeMetrics()
	InitializeMetrics()

	if n := testutil.CollectAndCount(IntakeFilesTotal); n != 4 {
		t.Errorf("IntakeFilesTotal series = %d, want 4", n)
	}
	if n := testutil.CollectAndCount(ExportsTotal); n != 4 {
		t.Errorf("ExportsTotal series = %d, want 4", n)
	}
	if n := testutil.CollectAndCount(FilesystemRetries); n != 6 {
		t.Errorf("FilesystemRetries series = %d, want 6", n)
	}
}
