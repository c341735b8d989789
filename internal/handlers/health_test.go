package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sku-renamer/internal/descriptor"
)

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	h, store := newTestHandlers(t)
	seedRecord(t, store, "a", ptr(descriptor.Front))

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	decode(t, w, &resp)
	if resp.Status != statusHealthy || !resp.Ready {
		t.Errorf("Expected healthy and ready, got %+v", resp)
	}
	if resp.Images != 1 {
		t.Errorf("Expected 1 image, got %d", resp.Images)
	}
	if resp.GoVersion == "" || resp.NumCPU == 0 {
		t.Error("Expected system info to be populated")
	}
	if resp.Publishing {
		t.Error("Expected publishing to be off without a publisher")
	}

	h.publisher = &fakePublisher{}
	w = httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	decode(t, w, &resp)
	if !resp.Publishing {
		t.Error("Expected publishing to be reported")
	}
}

func TestHealthCheckNotReady(t *testing.T) {
	t.Parallel()

	h := &Handlers{}

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	var resp HealthResponse
	decode(t, w, &resp)
	if resp.Status != statusStarting {
		t.Errorf("Expected status %q, got %q", statusStarting, resp.Status)
	}
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()

	h := &Handlers{}

	tests := []struct {
		method     string
		expectBody bool
	}{
		{http.MethodGet, true},
		{http.MethodHead, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.LivenessCheck(w, httptest.NewRequest(tt.method, "/livez", http.NoBody))

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			if gotBody := w.Body.Len() > 0; gotBody != tt.expectBody {
				t.Errorf("Body present = %v, want %v", gotBody, tt.expectBody)
			}
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()

	ready, _ := newTestHandlers(t)
	tests := []struct {
		name       string
		h          *Handlers
		wantStatus int
	}{
		{"Ready", ready, http.StatusOK},
		{"Not wired", &Handlers{}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
