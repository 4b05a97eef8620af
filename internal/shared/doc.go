// Package shared holds helpers used across the dashboard packages that do not
// belong to any one layer.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - dataset fixtures (records and CSV files) for loader, aggregation
//     and transport tests
//
// Nothing here carries business logic.
package shared
