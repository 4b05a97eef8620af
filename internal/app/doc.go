// Package app wires the dashboard server together: configuration, logging,
// OpenTelemetry, the dataset-backed dashboard service, the WebSocket hub and
// the chi router.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, optional config.yaml, BIKE_* env vars)
//	2. Initialize logging and OpenTelemetry
//	3. Load the rental dataset; a malformed file aborts startup
//	4. Start the WebSocket hub
//	5. Build the router and HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run serves until SIGINT or SIGTERM. Shutdown drains in-flight requests,
// closes WebSocket clients and flushes telemetry within
// Server.ShutdownTimeout.
package app
