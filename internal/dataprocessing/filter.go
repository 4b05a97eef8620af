package dataprocessing

import (
	"time"

	"bikepulse/pkg/contracts/domain"
)

// FilterByDateRange returns the records dated within [start, end], both ends
// inclusive and compared by calendar day. Relative order is preserved and the
// input is never modified. A reversed range yields an empty, non-nil slice.
func FilterByDateRange(records []domain.Record, start, end time.Time) []domain.Record {
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)

	out := make([]domain.Record, 0, len(records))
	if start.After(end) {
		return out
	}

	for _, r := range records {
		d := domain.TruncateDay(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
