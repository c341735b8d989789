package handlers

import (
	"net/http"
	"runtime"
	"time"

	"sku-renamer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Images     int    `json:"images"`
	Processing bool   `json:"processing"`
	Publishing bool   `json:"publishing"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

func (h *Handlers) ready() bool {
	return h.store != nil && h.intake != nil && h.builder != nil
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Ready:        h.ready(),
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		Publishing:   h.publisher != nil,
	}

	if response.Ready {
		response.Status = statusHealthy
		response.Images = h.store.Len()
		response.Processing = h.store.Processing()
	} else {
		response.Status = statusStarting
	}

	w.Header().Set("Content-Type", "application/json")

	if !response.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.ready() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
