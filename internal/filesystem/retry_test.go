package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = time.Sleep })
	return &slept
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetryRecoversFromStaleHandle(t *testing.T) {
	slept := noSleep(t)
	config := RetryConfig{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond, MaxBackoff: 15 * time.Millisecond}

	calls := 0
	got, err := withRetry("open", "/share/a.jpg", config, func() (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("open: %w", syscall.ESTALE)
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("withRetry() = %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{10 * time.Millisecond, 15 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoff = %v, want %v", *slept, want)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	noSleep(t)
	config := RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	calls := 0
	_, err := withRetry("stat", "/share/a.jpg", config, func() (int, error) {
		calls++
		return 0, syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Errorf("err = %v, want ESTALE", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryOtherErrorsFailFast(t *testing.T) {
	slept := noSleep(t)

	calls := 0
	_, err := withRetry("stat", "/x", DefaultRetryConfig(), func() (int, error) {
		calls++
		return 0, os.ErrPermission
	})
	if !errors.Is(err, os.ErrPermission) || calls != 1 || len(*slept) != 0 {
		t.Errorf("err = %v, calls = %d, slept = %v", err, calls, *slept)
	}
}

func TestStatAndOpenWithRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_0001.ARW")
	if err := os.WriteFile(path, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 3 {
		t.Errorf("Size() = %d", info.Size())
	}

	f, err := OpenWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if _, err := OpenWithRetry(path+".missing", DefaultRetryConfig()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}
