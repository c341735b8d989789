package memory

import (
	"runtime/debug"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LimitBytes != 0 {
		t.Errorf("LimitBytes = %d, want 0", cfg.LimitBytes)
	}
	if cfg.ResumeMark >= cfg.PauseMark {
		t.Errorf("ResumeMark %.2f must be below PauseMark %.2f", cfg.ResumeMark, cfg.PauseMark)
	}
	if cfg.CheckInterval != 2*time.Second {
		t.Errorf("CheckInterval = %v", cfg.CheckInterval)
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", DefaultMemoryRatio},
		{"0.5", 0.5},
		{"1", 1},
		{"0", DefaultMemoryRatio},
		{"1.5", DefaultMemoryRatio},
		{"half", DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseRatio(tt.raw); got != tt.want {
				t.Errorf("parseRatio(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestConfigureFromEnv(t *testing.T) {
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })

	t.Run("no limit", func(t *testing.T) {
		t.Setenv("GOMEMLIMIT", "")
		t.Setenv("MEMORY_LIMIT", "")
		res := ConfigureFromEnv()
		if res.Configured || res.Source != "none" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Setenv("GOMEMLIMIT", "")
		t.Setenv("MEMORY_LIMIT", "lots")
		if res := ConfigureFromEnv(); res.Configured {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("container limit", func(t *testing.T) {
		t.Setenv("GOMEMLIMIT", "")
		t.Setenv("MEMORY_LIMIT", "1000000000")
		t.Setenv("MEMORY_RATIO", "0.5")

		res := ConfigureFromEnv()
		if !res.Configured || res.Source != "MEMORY_LIMIT" {
			t.Fatalf("got %+v", res)
		}
		if res.GoMemLimit != 500000000 {
			t.Errorf("GoMemLimit = %d, want 500000000", res.GoMemLimit)
		}
		if got := debug.SetMemoryLimit(-1); got != 500000000 {
			t.Errorf("runtime limit = %d", got)
		}
	})

	t.Run("explicit GOMEMLIMIT wins", func(t *testing.T) {
		t.Setenv("GOMEMLIMIT", "1GiB")
		t.Setenv("MEMORY_LIMIT", "1000000000")
		if res := ConfigureFromEnv(); res.Source != "GOMEMLIMIT" {
			t.Errorf("Source = %q", res.Source)
		}
	})
}
