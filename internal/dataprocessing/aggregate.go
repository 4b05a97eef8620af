package dataprocessing

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"bikepulse/pkg/contracts/domain"
)

// The aggregators below are pure: same input, same output, no ordering beyond
// key order. Every enumerated key is always present; an empty group gets a nil
// mean and a zero sum.

// DailyUsage buckets records by calendar day, resampled so every day between
// the first and last record has a row. Days without records have zero rentals
// and nil means. Empty input yields an empty table.
func DailyUsage(records []domain.Record) []domain.DailyUsageRow {
	if len(records) == 0 {
		return []domain.DailyUsageRow{}
	}

	type bucket struct {
		total    int64
		temps    []float64
		humidity []float64
	}
	buckets := make(map[time.Time]*bucket)
	first, last := domain.TruncateDay(records[0].Date), domain.TruncateDay(records[0].Date)

	for _, r := range records {
		d := domain.TruncateDay(r.Date)
		b, ok := buckets[d]
		if !ok {
			b = &bucket{}
			buckets[d] = b
		}
		b.total += r.RentalCount
		b.temps = append(b.temps, r.Temperature)
		b.humidity = append(b.humidity, r.Humidity)

		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	rows := make([]domain.DailyUsageRow, 0, int(last.Sub(first).Hours()/24)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		row := domain.DailyUsageRow{Date: d}
		if b, ok := buckets[d]; ok {
			row.TotalRentals = b.total
			row.AvgTemp = mean(b.temps)
			row.AvgHumidity = mean(b.humidity)
		}
		rows = append(rows, row)
	}
	return rows
}

// SeasonalUsage averages rentals per season.
func SeasonalUsage(records []domain.Record) []domain.SeasonalUsageRow {
	counts := make(map[domain.Season][]float64, len(domain.Seasons))
	for _, r := range records {
		counts[r.Season] = append(counts[r.Season], float64(r.RentalCount))
	}

	rows := make([]domain.SeasonalUsageRow, 0, len(domain.Seasons))
	for _, s := range domain.Seasons {
		rows = append(rows, domain.SeasonalUsageRow{
			Season:     s,
			SeasonName: s.String(),
			AvgRentals: mean(counts[s]),
		})
	}
	return rows
}

// YearlyUsage sums rentals and averages temperature per dataset year.
func YearlyUsage(records []domain.Record) []domain.YearlyUsageRow {
	totals := make(map[int]int64, len(domain.YearIndexes))
	temps := make(map[int][]float64, len(domain.YearIndexes))
	for _, r := range records {
		totals[r.YearIndex] += r.RentalCount
		temps[r.YearIndex] = append(temps[r.YearIndex], r.Temperature)
	}

	rows := make([]domain.YearlyUsageRow, 0, len(domain.YearIndexes))
	for _, y := range domain.YearIndexes {
		rows = append(rows, domain.YearlyUsageRow{
			YearIndex:    y,
			YearLabel:    domain.YearLabel(y),
			TotalRentals: totals[y],
			AvgTemp:      mean(temps[y]),
		})
	}
	return rows
}

// HolidayUsage averages rentals for holidays and non-holidays.
func HolidayUsage(records []domain.Record) []domain.HolidayUsageRow {
	counts := make(map[domain.HolidayFlag][]float64, len(domain.HolidayFlags))
	for _, r := range records {
		counts[r.Holiday] = append(counts[r.Holiday], float64(r.RentalCount))
	}

	rows := make([]domain.HolidayUsageRow, 0, len(domain.HolidayFlags))
	for _, h := range domain.HolidayFlags {
		rows = append(rows, domain.HolidayUsageRow{
			Holiday:     h,
			HolidayType: h.String(),
			AvgRentals:  mean(counts[h]),
		})
	}
	return rows
}

// WeekdayUsage averages rentals per day of week.
func WeekdayUsage(records []domain.Record) []domain.WeekdayUsageRow {
	counts := make(map[domain.Weekday][]float64, len(domain.Weekdays))
	for _, r := range records {
		counts[r.Weekday] = append(counts[r.Weekday], float64(r.RentalCount))
	}

	rows := make([]domain.WeekdayUsageRow, 0, len(domain.Weekdays))
	for _, w := range domain.Weekdays {
		rows = append(rows, domain.WeekdayUsageRow{
			Weekday:     w,
			WeekdayName: w.String(),
			AvgRentals:  mean(counts[w]),
		})
	}
	return rows
}

// Summarize runs all five aggregators over the same records.
func Summarize(records []domain.Record) domain.SummaryTables {
	return domain.SummaryTables{
		Daily:    DailyUsage(records),
		Seasonal: SeasonalUsage(records),
		Yearly:   YearlyUsage(records),
		Holiday:  HolidayUsage(records),
		Weekday:  WeekdayUsage(records),
	}
}

// mean returns nil for an empty sample.
func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	return domain.Float(stat.Mean(xs, nil))
}
