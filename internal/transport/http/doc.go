// Package http implements the HTTP and WebSocket handlers for the bike rental
// dashboard. Handlers stay thin: they parse the request, call the dashboard
// service and format the response.
//
// # Routes
//
//	GET /                                  server-rendered dashboard page
//	GET /ws                                WebSocket range updates
//	GET /api/health, /ready, /live         health probes
//	GET /api/version                       build information
//	GET /api/dashboard?start=&end=         full view model as JSON
//	GET /api/dashboard/range               dataset bounds
//	GET /api/dashboard/views/{view}        one section with its summary rows
//	GET /api/dashboard/export.xlsx         workbook download
//	GET /api/dashboard/export/{view}.csv   one summary table as CSV
//
// Empty start or end falls back to the dataset bounds. Dates outside the
// dataset are clamped, and a reversed range renders placeholders.
//
// # Error Handling
//
// Every failure is written as an RFC 7807 problem document through
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/dashboard/invalid-date",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "start must use the YYYY-MM-DD format",
//	    "instance": "/api/dashboard",
//	    "trace_id": "abc123"
//	}
//
// # WebSocket Protocol
//
// Clients send {"start":"2011-01-01","end":"2011-03-31"} and receive a
// "dashboard" message carrying the re-rendered view model, or an "error"
// message with a code and message. {"type":"heartbeat"} frames are ignored.
package http
