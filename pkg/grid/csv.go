package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// ExportCSV serializes a week's row set to a flat tabular form: a header row
// with dated day columns, one record per grid row, and a totals footer. It
// is a pure read-only operation on its inputs.
func ExportCSV(w io.Writer, key week.Key, rows timesheet.Document) error {
	days := key.Days()

	header := make([]string, 0, 12)
	header = append(header, "Project Type", "Project Name", "Task", "Comment")
	for i, day := range timesheet.Days {
		header = append(header, fmt.Sprintf("%s %s", titleDay(day), week.ShortLabel(days[i])))
	}
	header = append(header, "Total")

	data := make([][]string, 0, len(rows)+2)
	data = append(data, header)
	for _, row := range rows {
		record := make([]string, 0, 12)
		record = append(record, row.ProjectType, row.ProjectName, row.Task, row.Comment)
		for _, day := range timesheet.Days {
			record = append(record, hoursToString(row.Hours.Get(day)))
		}
		record = append(record, hoursToString(row.Total))
		data = append(data, record)
	}

	totals := Recompute(rows)
	footer := make([]string, 0, 12)
	footer = append(footer, "Totals:", "", "", "")
	for _, day := range timesheet.Days {
		footer = append(footer, hoursToString(totals.Day(day)))
	}
	footer = append(footer, hoursToString(totals.Overall))
	data = append(data, footer)

	writer := csv.NewWriter(w)
	for _, record := range data {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("could not write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("could not write csv: %w", err)
	}
	return nil
}

func hoursToString(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

func titleDay(day string) string {
	switch day {
	case "mon":
		return "Mon"
	case "tue":
		return "Tue"
	case "wed":
		return "Wed"
	case "thu":
		return "Thu"
	case "fri":
		return "Fri"
	case "sat":
		return "Sat"
	case "sun":
		return "Sun"
	}
	return day
}
