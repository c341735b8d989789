package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sku-renamer/internal/archive"
	"sku-renamer/internal/batch"
	"sku-renamer/internal/handlers"
	"sku-renamer/internal/intake"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/memory"
	"sku-renamer/internal/metrics"
	"sku-renamer/internal/middleware"
	"sku-renamer/internal/publish"
	"sku-renamer/internal/startup"
	"sku-renamer/internal/thumbnail"

	"github.com/gorilla/mux"
)

const metricsCollectInterval = 15 * time.Second

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()

	// Originals stay in memory until the batch is cleared
	memory.ConfigureFromEnv()
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	// Preview generation
	if config.VipsEnabled {
		if err := thumbnail.InitVips(); err != nil {
			logging.Warn("libvips unavailable: %v", err)
		}
	}
	startup.LogThumbnailInit(config.VipsEnabled, thumbnail.IsVipsAvailable())
	extractor := thumbnail.NewExtractor(thumbnail.Options{UseVips: config.VipsEnabled})

	pipeline := intake.New(extractor, intake.Options{Workers: config.IntakeWorkers, Gate: monitor})
	store := batch.NewStore()
	builder := archive.NewBuilder(archive.DefaultLevel)

	// Optional archive publishing
	var publisher handlers.Publisher
	pub, err := publish.New(config.Publish)
	startup.LogPublishInit(err)
	if err == nil {
		publisher = pub
	}

	h := handlers.New(store, pipeline, builder, publisher, config)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogRequests, config.LogHealthChecks)

	var handler http.Handler = router
	handler = middleware.MaxBodySize(config.MaxUploadBytes)(handler)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	if config.LogRequests {
		loggingConfig := middleware.DefaultLoggingConfig()
		loggingConfig.LogHealthChecks = config.LogHealthChecks
		handler = middleware.Logger(loggingConfig)(handler)
	}
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(store, metricsCollectInterval)
		collector.Start()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, monitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Probes and build info
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/sku", h.SetSKU).Methods("PUT")
	api.HandleFunc("/descriptors", h.ListDescriptors).Methods("GET")
	api.HandleFunc("/validate", h.Validate).Methods("GET")
	api.HandleFunc("/batch", h.ClearBatch).Methods("DELETE")
	api.HandleFunc("/export", h.Export).Methods("POST")

	// Images
	api.HandleFunc("/images", h.UploadImages).Methods("POST")
	api.HandleFunc("/images/{id}", h.DeleteImage).Methods("DELETE")
	api.HandleFunc("/images/{id}/preview", h.GetPreview).Methods("GET")
	api.HandleFunc("/images/{id}/descriptor", h.SetDescriptor).Methods("PUT")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	monitor.Stop()

	startup.LogShutdownStep("Shutting down libvips")
	thumbnail.ShutdownVips()
	startup.LogShutdownStepComplete("libvips released")

	startup.LogShutdownComplete()
}
