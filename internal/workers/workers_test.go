package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")
	procs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		expected   int
	}{
		{"CPU bound, no limit", 1.0, 0, procs},
		{"IO bound, no limit", 2.0, 0, procs * 2},
		{"Limit of one", 2.0, 1, 1},
		{"Tiny multiplier still yields one worker", 0.0001, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.expected {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		override string
		limit    int
		expected int
	}{
		{"Override used", "3", 0, 3},
		{"Override capped by limit", "20", 11, 11},
		{"Invalid override ignored", "many", 1, 1},
		{"Zero override ignored", "0", 1, 1},
		{"Negative override ignored", "-4", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.override)
			if got := Count(1.0, tt.limit); got != tt.expected {
				t.Errorf("Count() with %s=%q = %d, want %d", OverrideEnv, tt.override, got, tt.expected)
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	if got, want := ForCPU(0), runtime.GOMAXPROCS(0); got != want {
		t.Errorf("ForCPU(0) = %d, want %d", got, want)
	}
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
}
