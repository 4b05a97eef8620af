package exporter

import (
	"fmt"

	"bikepulse/pkg/contracts/domain"
)

// Table is one summary table flattened for export. Records holds the CSV
// text and Cells the typed spreadsheet values of the same rows.
type Table struct {
	View    domain.ViewID
	Headers []string
	Records [][]string
	Cells   [][]interface{}
}

// FileName is the CSV file name for a view, e.g. "seasonal_usage.csv".
func FileName(view domain.ViewID) string {
	return fmt.Sprintf("%s_usage.csv", view)
}

// BuildTable flattens the key-ordered summary table of one view. Column
// names follow the dataset's own vocabulary.
func BuildTable(tables domain.SummaryTables, view domain.ViewID) (Table, error) {
	t := Table{View: view}

	switch view {
	case domain.ViewDaily:
		t.Headers = []string{"dteday", "total_rentals", "avg_temp", "avg_humidity"}
		for _, r := range tables.Daily {
			t.Records = append(t.Records, []string{formatDate(r.Date), formatInt(r.TotalRentals), formatNullable(r.AvgTemp), formatNullable(r.AvgHumidity)})
			t.Cells = append(t.Cells, []interface{}{formatDate(r.Date), r.TotalRentals, cellValue(r.AvgTemp), cellValue(r.AvgHumidity)})
		}
	case domain.ViewSeasonal:
		t.Headers = []string{"season", "avg_rentals", "season_name"}
		for _, r := range tables.Seasonal {
			t.Records = append(t.Records, []string{formatInt(int64(r.Season)), formatNullable(r.AvgRentals), r.SeasonName})
			t.Cells = append(t.Cells, []interface{}{int(r.Season), cellValue(r.AvgRentals), r.SeasonName})
		}
	case domain.ViewYearly:
		t.Headers = []string{"yr", "total_rentals", "avg_temp", "year"}
		for _, r := range tables.Yearly {
			t.Records = append(t.Records, []string{formatInt(int64(r.YearIndex)), formatInt(r.TotalRentals), formatNullable(r.AvgTemp), r.YearLabel})
			t.Cells = append(t.Cells, []interface{}{r.YearIndex, r.TotalRentals, cellValue(r.AvgTemp), r.YearLabel})
		}
	case domain.ViewHoliday:
		t.Headers = []string{"holiday", "avg_rentals", "holiday_type"}
		for _, r := range tables.Holiday {
			t.Records = append(t.Records, []string{formatInt(int64(r.Holiday)), formatNullable(r.AvgRentals), r.HolidayType})
			t.Cells = append(t.Cells, []interface{}{int(r.Holiday), cellValue(r.AvgRentals), r.HolidayType})
		}
	case domain.ViewWeekday:
		t.Headers = []string{"weekday", "avg_rentals", "weekday_name"}
		for _, r := range tables.Weekday {
			t.Records = append(t.Records, []string{formatInt(int64(r.Weekday)), formatNullable(r.AvgRentals), r.WeekdayName})
			t.Cells = append(t.Cells, []interface{}{int(r.Weekday), cellValue(r.AvgRentals), r.WeekdayName})
		}
	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	return t, nil
}
