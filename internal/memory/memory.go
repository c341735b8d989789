package memory

import (
	"context"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/metrics"
)

// Config holds the thresholds of a Monitor.
type Config struct {
	// LimitBytes is the soft limit usage is measured against. Zero falls back
	// to GOMEMLIMIT; without either the monitor never pauses.
	LimitBytes int64

	// ResumeMark is the fraction of the limit below which a paused monitor
	// resumes.
	ResumeMark float64

	// PauseMark is the fraction of the limit at which intake pauses.
	PauseMark float64

	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the server.
func DefaultConfig() Config {
	return Config{
		ResumeMark:    0.7,
		PauseMark:     0.85,
		CheckInterval: 2 * time.Second,
	}
}

// Monitor samples heap usage and holds intake back while it is critical.
// Each upload keeps its full original in memory, so a few concurrent 11-image
// batches of RAW files can approach the container limit.
type Monitor struct {
	config Config
	limit  int64
	sample func() uint64

	mu      sync.RWMutex
	current uint64
	paused  bool
	resume  chan struct{}

	// stallLogged is set once a waiter has blocked during the current pause.
	stallLogged bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMonitor creates a monitor. It does nothing until Start is called.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit configured, intake is never paused")
	}

	return &Monitor{
		config: config,
		limit:  limit,
		sample: heapAlloc,
		resume: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins periodic sampling.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) check() {
	alloc := m.sample()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = alloc

	switch {
	case !m.paused && usage >= m.config.PauseMark:
		logging.Warn("Memory critical (%.1f%% of limit), pausing intake", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.ResumeMark:
		logging.Info("Memory recovered (%.1f%% of limit), resuming intake", usage*100)
		m.paused = false
		m.stallLogged = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// Wait blocks while intake is paused. It returns ctx.Err() if the context
// ends first and nil once it is safe to read another file. A stopped monitor
// never blocks.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resume := m.resume
	firstStall := !m.stallLogged
	m.stallLogged = true
	usage := float64(m.current) / float64(m.limit)
	m.mu.Unlock()

	if firstStall {
		logging.Warn("Memory monitor: uploads are waiting at %.1f%% of limit; they resume once memory is freed or the batch is cleared", usage*100)
	}

	select {
	case <-resume:
		return nil
	case <-m.stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports whether intake is currently held back.
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Usage returns the last sampled allocation as a fraction of the limit, or 0
// without a limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}
