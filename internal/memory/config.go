package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"sku-renamer/internal/logging"

	"github.com/dustin/go-humanize"
)

// DefaultMemoryRatio is the share of the container limit given to the Go
// heap. The rest covers libvips buffers and goroutine stacks.
const DefaultMemoryRatio = 0.85

// LimitResult reports how the soft memory limit was chosen.
type LimitResult struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets the Go soft memory limit from the container limit.
// Call it early in main, before batches start arriving.
//
// Environment variables:
//   - GOMEMLIMIT: honoured as set by the runtime, nothing is changed
//   - MEMORY_LIMIT: container limit in bytes (Kubernetes Downward API)
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the heap (default 0.85)
func ConfigureFromEnv() LimitResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		res := LimitResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.Configured = true
			res.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return res
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving GOMEMLIMIT unset")
		return LimitResult{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return LimitResult{Source: "none"}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	limit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(limit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		humanize.IBytes(uint64(limit)), ratio*100, humanize.IBytes(uint64(containerLimit)))

	return LimitResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     limit,
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}
