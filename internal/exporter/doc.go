// Package exporter writes rendered dashboards to files and streams.
//
// CSVWriter is the low level CSV encoder (UTF-8 BOM for Excel). CSVExporter
// writes one CSV per summary table, ExcelExporter one workbook with a sheet
// per view plus a Summary sheet, and ReportWriter fans out over several
// formats at once for the report command.
//
// Undefined means are written as empty cells; all other floats use two
// decimals.
package exporter
