package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the worker count.
const OverrideEnv = "INTAKE_WORKERS"

// Count returns the number of workers for a task. The multiplier scales the
// available CPUs and limit caps the result; use 0 for no cap. The result is
// always at least 1.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks such as preview decoding
// (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
