package config

import "time"

// Application constants
const (
	AppName = "Rental Bike Dashboard"

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// Network Timeouts
	DefaultRequestTimeout    = 30 * time.Second
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 4096
	WebSocketMaxMessageSize  = 4096

	// File Paths (relative to the working or executable directory)
	DefaultDataFile  = "data/day.csv"
	DefaultReportDir = "reports"
	DefaultLogFile   = "logs/app.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Telemetry exporters
	ExporterNone             = "none"
	TraceExporterStdout      = "stdout"
	MetricExporterPrometheus = "prometheus"
)

// API Endpoints
const (
	APIBasePath       = "/api"
	DashboardEndpoint = "/api/dashboard"
	HealthEndpoint    = "/api/health"
	VersionEndpoint   = "/api/version"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
