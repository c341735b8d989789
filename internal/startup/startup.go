package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/publish"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	MaxUploadBytes  int64
	IntakeWorkers   int
	VipsEnabled     bool
	LogRequests     bool
	LogHealthChecks bool

	Publish publish.Config
}

const (
	defaultMaxUploadMB = 600
	bytesPerMB         = 1024 * 1024
)

// LoadDotEnv loads variables from a .env file in the working directory if one
// exists. Variables already set in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Failed to load .env file: %v", err)
		}
		return
	}
	logging.Debug("Loaded environment from .env")
}

// PublishConfig reads the object storage settings from S3_* variables.
func PublishConfig() publish.Config {
	return publish.Config{
		Endpoint:  getEnv("S3_ENDPOINT", ""),
		Bucket:    getEnv("S3_BUCKET", ""),
		AccessKey: getEnv("S3_ACCESS_KEY", ""),
		SecretKey: getEnv("S3_SECRET_KEY", ""),
		Region:    getEnv("S3_REGION", ""),
		Prefix:    getEnv("S3_PREFIX", ""),
		UseSSL:    getEnvBool("S3_USE_SSL", true),
	}
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	LoadDotEnv()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB)) * bytesPerMB,
		IntakeWorkers:   getEnvInt("INTAKE_WORKERS", 0),
		VipsEnabled:     getEnvBool("VIPS_ENABLED", false),
		LogRequests:     getEnvBool("LOG_REQUESTS", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", false),
		Publish:         PublishConfig(),
	}

	if config.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", config.MaxUploadBytes/bytesPerMB)
	}
	if config.IntakeWorkers < 0 {
		return nil, fmt.Errorf("INTAKE_WORKERS must not be negative, got %d", config.IntakeWorkers)
	}

	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  MAX_UPLOAD_MB:       %d", config.MaxUploadBytes/bytesPerMB)
	if config.IntakeWorkers > 0 {
		logging.Info("  INTAKE_WORKERS:      %d", config.IntakeWorkers)
	} else {
		logging.Info("  INTAKE_WORKERS:      auto")
	}
	logging.Info("  VIPS_ENABLED:        %v", config.VipsEnabled)
	logging.Info("  LOG_REQUESTS:        %v", config.LogRequests)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))
	logging.Info("    Publishing:  %s", enabledString(config.Publish.Enabled()))
	if config.Publish.Enabled() {
		logging.Info("      Endpoint:  %s", config.Publish.Endpoint)
		logging.Info("      Bucket:    %s", config.Publish.Bucket)
		logging.Debug("      Prefix:    %q", config.Publish.Prefix)
		logging.Debug("      SSL:       %v", config.Publish.UseSSL)
	}

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogThumbnailInit logs which preview backend is active
func LogThumbnailInit(vipsRequested, vipsAvailable bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW GENERATION")
	logging.Info("------------------------------------------------------------")

	switch {
	case vipsRequested && vipsAvailable:
		logging.Info("  [OK] libvips backend for JPEG/PNG previews")
	case vipsRequested:
		logging.Warn("  libvips requested but not available, using pure Go decoder")
	default:
		logging.Info("  Pure Go decoder for JPEG/PNG previews")
	}
	logging.Info("  RAW previews: embedded JPEG extraction")
}

// LogPublishInit logs the result of connecting to object storage
func LogPublishInit(err error) {
	if err == nil {
		logging.Info("  [OK] Object storage client ready")
		return
	}
	if errors.Is(err, publish.ErrDisabled) {
		logging.Info("  Archive publishing disabled (set S3_ENDPOINT and S3_BUCKET to enable)")
		return
	}
	logging.Warn("  Object storage unavailable: %v", err)
	logging.Warn("  Archive publishing will be disabled")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logRequests, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	if !logRequests {
		logging.Info("  HTTP request logging: OFF (set LOG_REQUESTS=true to enable)")
		return
	}
	logging.Info("  HTTP request logging: ON")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	// API routes are grouped by their second segment
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
   _____ __ ____  __   ____
  / ___// //_/ / / /  / __ \___  ____  ____ _____ ___  ___  _____
  \__ \/ ,< / / / /  / /_/ / _ \/ __ \/ __ '/ __ '__ \/ _ \/ ___/
 ___/ / /| / /_/ /  / _, _/  __/ / / / /_/ / / / / / /  __/ /
/____/_/ |_\____/  /_/ |_|\___/_/ /_/\__,_/_/ /_/ /_/\___/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
