package grid

import (
	"math"

	"github.com/weektally/weektally/pkg/timesheet"
)

// DefaultOverloadThreshold is the daily-hours level at which a row is flagged
// as overloaded. A day at or above the threshold flags the row.
const DefaultOverloadThreshold = 8.0

// Totals is the derived per-day and overall sum of a row set. It is owned by
// the aggregation functions and recomputed in full on every change; it is
// never stored or edited independently.
type Totals struct {
	Mon     float64 `json:"mon"`
	Tue     float64 `json:"tue"`
	Wed     float64 `json:"wed"`
	Thu     float64 `json:"thu"`
	Fri     float64 `json:"fri"`
	Sat     float64 `json:"sat"`
	Sun     float64 `json:"sun"`
	Overall float64 `json:"overall"`
}

// Day returns the total for the given day label, 0 for unknown labels.
func (t Totals) Day(day string) float64 {
	switch day {
	case "mon":
		return t.Mon
	case "tue":
		return t.Tue
	case "wed":
		return t.Wed
	case "thu":
		return t.Thu
	case "fri":
		return t.Fri
	case "sat":
		return t.Sat
	case "sun":
		return t.Sun
	}
	return 0
}

func (t *Totals) addDay(day string, value float64) {
	switch day {
	case "mon":
		t.Mon += value
	case "tue":
		t.Tue += value
	case "wed":
		t.Wed += value
	case "thu":
		t.Thu += value
	case "fri":
		t.Fri += value
	case "sat":
		t.Sat += value
	case "sun":
		t.Sun += value
	}
}

// Recompute derives the full Totals from the row set. The result does not
// depend on row order, and non-finite hour entries count as 0.
func Recompute(rows timesheet.Document) Totals {
	var totals Totals
	for _, row := range rows {
		for _, day := range timesheet.Days {
			value := row.Hours.Get(day)
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			totals.addDay(day, value)
		}
	}
	for _, day := range timesheet.Days {
		totals.Overall += totals.Day(day)
	}
	return totals
}

// Overloaded reports whether any single day of the row meets or exceeds the
// threshold. It is a read-only check; the flag is presentation state and is
// never written back into the row.
func Overloaded(row timesheet.Row, threshold float64) bool {
	for _, day := range timesheet.Days {
		if row.Hours.Get(day) >= threshold {
			return true
		}
	}
	return false
}
