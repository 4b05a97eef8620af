package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// DatasetHeader is the column layout of the canonical day.csv file.
const DatasetHeader = "instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt"

// Day parses a YYYY-MM-DD date or fails the test.
func Day(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", s, err)
	}
	return d
}

// ScenarioRecords returns the three-day reference dataset:
// a Monday, a Tuesday holiday and a summer Wednesday.
func ScenarioRecords(t testing.TB) []domain.Record {
	t.Helper()
	return []domain.Record{
		{Date: Day(t, "2011-01-03"), Season: domain.SeasonSpring, YearIndex: 0, Holiday: domain.NonHoliday, Weekday: 1, Temperature: 0.2, Humidity: 0.4, RentalCount: 100},
		{Date: Day(t, "2011-01-04"), Season: domain.SeasonSpring, YearIndex: 0, Holiday: domain.Holiday, Weekday: 2, Temperature: 0.3, Humidity: 0.5, RentalCount: 50},
		{Date: Day(t, "2011-01-05"), Season: domain.SeasonSummer, YearIndex: 0, Holiday: domain.NonHoliday, Weekday: 3, Temperature: 0.4, Humidity: 0.6, RentalCount: 200},
	}
}

// ScenarioTable wraps ScenarioRecords in a RecordTable.
func ScenarioTable(t testing.TB) *domain.RecordTable {
	t.Helper()
	table, err := domain.NewRecordTable(ScenarioRecords(t))
	if err != nil {
		t.Fatalf("build scenario table: %v", err)
	}
	return table
}

// DatasetCSV renders records in the canonical day.csv column layout.
func DatasetCSV(records []domain.Record) string {
	var b strings.Builder
	b.WriteString(DatasetHeader)
	b.WriteString("\n")
	for i, r := range records {
		fmt.Fprintf(&b, "%d,%s,%d,%d,%d,%d,%d,1,1,%g,%g,%g,0.1,0,0,%d\n",
			i+1, r.Date.Format(domain.DateLayout), r.Season, r.YearIndex, int(r.Date.Month()),
			r.Holiday, r.Weekday, r.Temperature, r.Temperature, r.Humidity, r.RentalCount)
	}
	return b.String()
}

// WriteFile writes content into a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
