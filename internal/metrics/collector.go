package metrics

import (
	"sync"
	"time"

	"sku-renamer/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current batch statistics
type Stats struct {
	Images     int
	Assigned   int
	Unassigned int
	TotalBytes int64
	Processing bool
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	BatchImages.WithLabelValues("assigned").Set(float64(stats.Assigned))
	BatchImages.WithLabelValues("unassigned").Set(float64(stats.Unassigned))
	BatchBytes.Set(float64(stats.TotalBytes))
	if stats.Processing {
		ExportInProgress.Set(1)
	} else {
		ExportInProgress.Set(0)
	}

	logging.Debug("Metrics collected: images=%d, assigned=%d, bytes=%d",
		stats.Images, stats.Assigned, stats.TotalBytes)
}
