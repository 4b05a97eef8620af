// Package services holds the application layer between HTTP handlers and the
// pure dataset processing code.
//
// DashboardService owns the RecordTable loaded at startup. It resolves a
// requested date range against the dataset bounds (defaulting missing dates,
// clamping out-of-range ones) and hands the result to dataprocessing.Render.
// Each render is wrapped in a span and recorded in the business metrics.
//
// HealthService answers the health, readiness, liveness and version
// endpoints.
package services
