package dataprocessing

import (
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"bikepulse/pkg/contracts/domain"
)

// Display text shared by every renderer of the dashboard.
const (
	DashboardHeader  = "Rental Bike Dashboard"
	DashboardCaption = "Data: Capital Bikeshare daily rentals, 2011-2012"

	// Placeholder is shown wherever a statistic is undefined.
	Placeholder = "—"

	MetricTotalRentals = "Total Rentals"
	MetricAvgTemp      = "Average Temperature"
	MetricAvgHumidity  = "Average Humidity"
)

// Render filters the table to [start, end], runs the five aggregators and
// binds the results to section, chart and headline descriptions. It has no
// error paths: undefined statistics come through as nil values and
// placeholder strings.
func Render(table *domain.RecordTable, start, end time.Time) domain.ViewModel {
	filtered := FilterByDateRange(table.Records(), start, end)
	tables := Summarize(filtered)

	return domain.ViewModel{
		Header:  DashboardHeader,
		Caption: DashboardCaption,
		Range: domain.DateRange{
			Start:       domain.TruncateDay(start),
			End:         domain.TruncateDay(end),
			MinDate:     table.MinDate(),
			MaxDate:     table.MaxDate(),
			RecordCount: len(filtered),
		},
		Sections: []domain.Section{
			dailySection(tables.Daily),
			seasonalSection(tables.Seasonal),
			holidaySection(tables.Holiday),
			weekdaySection(tables.Weekday),
			yearlySection(tables.Yearly),
		},
		Tables: tables,
	}
}

// DailyMetrics computes the headline statistics over the daily table: total
// rentals, and mean temperature and humidity over days that have data,
// rounded to two decimals.
func DailyMetrics(rows []domain.DailyUsageRow) []domain.Metric {
	var (
		total    int64
		temps    []float64
		humidity []float64
	)
	for _, r := range rows {
		total += r.TotalRentals
		if r.AvgTemp != nil {
			temps = append(temps, *r.AvgTemp)
		}
		if r.AvgHumidity != nil {
			humidity = append(humidity, *r.AvgHumidity)
		}
	}

	avgTemp := roundedMean(temps)
	avgHumidity := roundedMean(humidity)

	return []domain.Metric{
		{Label: MetricTotalRentals, Value: strconv.FormatInt(total, 10), Raw: domain.Float(float64(total))},
		{Label: MetricAvgTemp, Value: formatValue(avgTemp, " °C"), Raw: avgTemp},
		{Label: MetricAvgHumidity, Value: formatValue(avgHumidity, ""), Raw: avgHumidity},
	}
}

func dailySection(rows []domain.DailyUsageRow) domain.Section {
	points := make([]domain.ChartPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.ChartPoint{
			Label: r.Date.Format(domain.DateLayout),
			Value: domain.Float(float64(r.TotalRentals)),
		})
	}

	return domain.Section{
		View:       domain.ViewDaily,
		Subheading: "Daily Bike Usage",
		Metrics:    DailyMetrics(rows),
		Chart: domain.ChartSpec{
			Kind:   domain.ChartLine,
			Title:  "Daily Bike Rentals Over Time",
			XLabel: "Date",
			YLabel: "Total Rentals",
			Points: points,
		},
		Rows: rows,
	}
}

func seasonalSection(rows []domain.SeasonalUsageRow) domain.Section {
	sorted := make([]domain.SeasonalUsageRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return descending(sorted[i].AvgRentals, sorted[j].AvgRentals, int(sorted[i].Season), int(sorted[j].Season))
	})

	points := make([]domain.ChartPoint, 0, len(sorted))
	for _, r := range sorted {
		points = append(points, domain.ChartPoint{Label: r.SeasonName, Value: r.AvgRentals})
	}

	return domain.Section{
		View:       domain.ViewSeasonal,
		Subheading: "Seasonal Bike Usage",
		Chart: domain.ChartSpec{
			Kind:   domain.ChartHorizontalBar,
			Title:  "Average Rentals by Season",
			XLabel: "Average Rentals",
			YLabel: "Season",
			Points: points,
		},
		Rows: sorted,
	}
}

func holidaySection(rows []domain.HolidayUsageRow) domain.Section {
	points := make([]domain.ChartPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.ChartPoint{Label: r.HolidayType, Value: r.AvgRentals})
	}

	return domain.Section{
		View:       domain.ViewHoliday,
		Subheading: "Holiday vs Non-Holiday Usage",
		Chart: domain.ChartSpec{
			Kind:   domain.ChartVerticalBar,
			Title:  "Average Rentals: Holiday vs Non-Holiday",
			XLabel: "Holiday Type",
			YLabel: "Average Rentals",
			Points: points,
		},
		Rows: rows,
	}
}

func weekdaySection(rows []domain.WeekdayUsageRow) domain.Section {
	sorted := make([]domain.WeekdayUsageRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return descending(sorted[i].AvgRentals, sorted[j].AvgRentals, int(sorted[i].Weekday), int(sorted[j].Weekday))
	})

	points := make([]domain.ChartPoint, 0, len(sorted))
	for _, r := range sorted {
		points = append(points, domain.ChartPoint{Label: r.WeekdayName, Value: r.AvgRentals})
	}

	return domain.Section{
		View:       domain.ViewWeekday,
		Subheading: "Weekday Bike Usage",
		Chart: domain.ChartSpec{
			Kind:   domain.ChartHorizontalBar,
			Title:  "Average Rentals by Weekday",
			XLabel: "Average Rentals",
			YLabel: "Weekday",
			Points: points,
		},
		Rows: sorted,
	}
}

func yearlySection(rows []domain.YearlyUsageRow) domain.Section {
	points := make([]domain.ChartPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.ChartPoint{Label: r.YearLabel, Value: domain.Float(float64(r.TotalRentals))})
	}

	return domain.Section{
		View:       domain.ViewYearly,
		Subheading: "Yearly Bike Usage",
		Chart: domain.ChartSpec{
			Kind:   domain.ChartVerticalBar,
			Title:  "Total Rentals by Year",
			XLabel: "Year",
			YLabel: "Total Rentals",
			Points: points,
		},
		Rows: rows,
	}
}

// descending orders by value high to low, nil last, ties by ascending key.
func descending(a, b *float64, keyA, keyB int) bool {
	switch {
	case a == nil && b == nil:
		return keyA < keyB
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a > *b
	default:
		return keyA < keyB
	}
}

func roundedMean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	return domain.Float(scalar.Round(stat.Mean(xs, nil), 2))
}

// formatValue prints the shortest decimal form of v followed by unit.
func formatValue(v *float64, unit string) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
