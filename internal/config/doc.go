// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml (or the file named by BIKE_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// Every variable carries the BIKE_ prefix followed by the section name:
//
//	BIKE_SERVER_PORT=8080
//	BIKE_DATA_FILE=data/day.csv
//	BIKE_LOGGING_LEVEL=debug
//	BIKE_SECURITY_RATE_LIMIT_RPS=20
//	BIKE_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dataFile := config.ResolvePath(cfg.Data.File)
package config
