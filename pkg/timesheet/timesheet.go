package timesheet

import "math"

// Days lists the week's day labels in grid order, Monday first. The labels
// double as the JSON field names of Hours and as the editable hour fields of
// the grid ("hours.mon" etc.).
var Days = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Hours holds the per-day hour entries of a single row.
type Hours struct {
	Mon float64 `json:"mon"`
	Tue float64 `json:"tue"`
	Wed float64 `json:"wed"`
	Thu float64 `json:"thu"`
	Fri float64 `json:"fri"`
	Sat float64 `json:"sat"`
	Sun float64 `json:"sun"`
}

// Get returns the hours entered for the given day label, 0 for unknown labels.
func (h Hours) Get(day string) float64 {
	switch day {
	case "mon":
		return h.Mon
	case "tue":
		return h.Tue
	case "wed":
		return h.Wed
	case "thu":
		return h.Thu
	case "fri":
		return h.Fri
	case "sat":
		return h.Sat
	case "sun":
		return h.Sun
	}
	return 0
}

// Set stores hours for the given day label and reports whether the label was
// recognized.
func (h *Hours) Set(day string, value float64) bool {
	switch day {
	case "mon":
		h.Mon = value
	case "tue":
		h.Tue = value
	case "wed":
		h.Wed = value
	case "thu":
		h.Thu = value
	case "fri":
		h.Fri = value
	case "sat":
		h.Sat = value
	case "sun":
		h.Sun = value
	default:
		return false
	}
	return true
}

// Row is a single timesheet line: what was worked on, a free-form comment,
// and hours per day. Total is derived and must always equal the sum of the
// hour entries; it is recomputed on every mutation, never edited directly.
type Row struct {
	ProjectType string  `json:"projectType"`
	ProjectName string  `json:"projectName"`
	Task        string  `json:"task"`
	Comment     string  `json:"comment"`
	Hours       Hours   `json:"hours"`
	Total       float64 `json:"total"`
}

// RecalcTotal recomputes the derived Total from the hour entries.
func (r *Row) RecalcTotal() {
	var sum float64
	for _, day := range Days {
		sum += r.Hours.Get(day)
	}
	r.Total = sum
}

// Document is the ordered row set of one week's timesheet.
type Document []Row

// BlankRow returns an empty row with zeroed hours.
func BlankRow() Row {
	return Row{}
}

// DefaultDocument returns the document a week is seeded with on first access:
// a single blank row.
func DefaultDocument() Document {
	return Document{BlankRow()}
}

// Normalize repairs a document read from an untrusted source (request body,
// cached JSON): a nil or empty document becomes the seeded default, negative
// or non-finite hour entries become 0, and every row's Total is recomputed so
// the total invariant holds. The input is not modified.
func Normalize(doc Document) Document {
	if len(doc) == 0 {
		return DefaultDocument()
	}
	normalized := make(Document, len(doc))
	for i, row := range doc {
		for _, day := range Days {
			value := row.Hours.Get(day)
			if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
				row.Hours.Set(day, 0)
			}
		}
		row.RecalcTotal()
		normalized[i] = row
	}
	return normalized
}
