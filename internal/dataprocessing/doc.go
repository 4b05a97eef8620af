// Package dataprocessing turns the rental dataset into dashboard views.
//
// # Architecture
//
// The package is a forward-only pipeline of small pieces:
//
//  1. Loader: reads day.csv (or an .xlsx export of it) into a domain.RecordTable
//  2. FilterByDateRange: selects the inclusive date window
//  3. Aggregators: DailyUsage, SeasonalUsage, YearlyUsage, HolidayUsage and
//     WeekdayUsage, each a pure function over the filtered records
//  4. Render: binds the summary tables to chart specs and headline metrics
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	table, err := loader.LoadFile(ctx, "data/day.csv")
//	if err != nil {
//	    return err
//	}
//	vm := dataprocessing.Render(table, table.MinDate(), table.MaxDate())
//
// # Error Handling
//
// Only loading can fail. Malformed rows abort the load with a PARSING
// AppError carrying the row number and column name. Filtering, aggregation
// and rendering never fail: empty ranges produce nil means that render as
// placeholders, and a reversed range simply selects nothing.
//
// # Ordering
//
// Aggregators emit rows in key order. Descending sorts for the seasonal and
// weekday views happen only in Render.
package dataprocessing
