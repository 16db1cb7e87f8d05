// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// DefaultSheetBaseURL is the published CSV export of the KKN program sheet.
const DefaultSheetBaseURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSn_Axyrj2IxuFsO3ucQAlzl30DgKCw7lDMf2aWT3syhOLem-4r8CZFpnxhgcY1fvSAvLJ1AXBnjlJt/pub?output=csv"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	Store     StoreConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
	Web       WebConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SheetsConfig holds the spreadsheet source and fetch settings.
type SheetsConfig struct {
	// BaseURL is the published-to-web CSV export URL; each sheet adds its gid
	BaseURL string `env:"SHEET_BASE_URL" default:"https://docs.google.com/spreadsheets/d/e/2PACX-1vSn_Axyrj2IxuFsO3ucQAlzl30DgKCw7lDMf2aWT3syhOLem-4r8CZFpnxhgcY1fvSAvLJ1AXBnjlJt/pub?output=csv"`

	// File is an optional YAML file listing sheets; empty uses the built-in tabs
	File string `env:"SHEETS_FILE"`

	// FetchTimeout is the HTTP timeout for one sheet download (default: 20s)
	FetchTimeout time.Duration `env:"SHEETS_FETCH_TIMEOUT" default:"20s"`

	// MaxConcurrent is the maximum number of parallel downloads (default: 4)
	MaxConcurrent int `env:"FETCH_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a download waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"FETCH_MAX_WAIT_TIME" default:"30s"`

	// MaxBodySize is the largest accepted sheet export in bytes (default: 10MB)
	MaxBodySize int64 `env:"SHEETS_MAX_BODY_SIZE" default:"10485760"`

	// RefreshInterval is how often sheets are re-fetched (default: 5m)
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" default:"5m"`
}

// StoreConfig holds snapshot persistence settings.
type StoreConfig struct {
	// Driver selects the snapshot backend: sqlite, postgres, s3, memory or none (default: sqlite)
	Driver string `env:"STORE_DRIVER" default:"sqlite"`

	// SQLitePath is the database file for the sqlite driver (default: proker.db)
	SQLitePath string `env:"SQLITE_PATH" default:"proker.db"`

	// DatabaseURL is the PostgreSQL connection string for the postgres driver
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of postgres connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// S3Bucket is the bucket for the s3 driver
	S3Bucket string `env:"S3_BUCKET"`

	// S3Region is the bucket region; empty uses the AWS default chain
	S3Region string `env:"S3_REGION"`

	// S3Prefix is prepended to every object key (default: snapshots/)
	S3Prefix string `env:"S3_PREFIX" default:"snapshots/"`

	// S3Endpoint overrides the S3 endpoint, e.g. a MinIO URL
	S3Endpoint string `env:"S3_ENDPOINT"`

	// SnapshotKeep is how many snapshots are kept per sheet (default: 20)
	SnapshotKeep int `env:"SNAPSHOT_KEEP" default:"20"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// RefreshLimit is requests per minute for the refresh endpoint (default: 6)
	RefreshLimit int `env:"RATE_LIMIT_REFRESH" default:"6"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects write endpoints with the X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TelemetryConfig holds OpenTelemetry metric export settings.
// The collector endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	// Enabled exports refresh and download metrics over OTLP/HTTP (default: false)
	Enabled bool `env:"TELEMETRY_ENABLED" default:"false"`

	// ServiceName is the service.name resource attribute (default: proker)
	ServiceName string `env:"TELEMETRY_SERVICE_NAME" default:"proker"`

	// ExportInterval is how often metrics are pushed (default: 60s)
	ExportInterval time.Duration `env:"TELEMETRY_EXPORT_INTERVAL" default:"60s"`
}

// WebConfig holds page and API settings.
type WebConfig struct {
	// SDGImageDir holds sdg-1.png .. sdg-17.png served under /sdgs/ (default: public/sdgs)
	SDGImageDir string `env:"SDG_IMAGE_DIR" default:"public/sdgs"`

	// MaxRequestBody caps POST bodies for the parse and format endpoints (default: 1MB)
	MaxRequestBody int64 `env:"WEB_MAX_REQUEST_BODY" default:"1048576"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
