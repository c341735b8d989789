// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig],
// after an optional .env file in the working directory has been applied.
// The following environment variables are supported:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MAX_UPLOAD_MB: Largest accepted request body in MiB (default: 600)
//   - INTAKE_WORKERS: Parallel preview workers (default: derived from CPUs)
//   - VIPS_ENABLED: Use libvips for JPEG/PNG previews when available (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_REQUESTS: Log HTTP requests (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//   - S3_ENDPOINT, S3_BUCKET: Object storage target for published archives
//   - S3_ACCESS_KEY, S3_SECRET_KEY, S3_REGION, S3_PREFIX: Object storage details
//   - S3_USE_SSL: Use TLS for object storage (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogThumbnailInit]: Preview backend selection
//   - [LogPublishInit]: Object storage availability
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
