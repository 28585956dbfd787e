package backup

import (
	"math"
	"strconv"
	"strings"

	"fitjournal/internal/metrics"
	"fitjournal/internal/models"
)

// csvHeader matches the column layout the frontend chart/export tooling
// expects. Only the notes column is quoted, so this is written by hand
// rather than through encoding/csv (which quotes conditionally).
const csvHeader = "Date,Weight (kg),Activity,Duration (min),Calories,Notes"

// utf8BOM makes spreadsheet apps pick up the encoding.
const utf8BOM = "\uFEFF"

// ExportCSV renders one row per entry in snapshot order. The calories
// column is derived the same way the dashboard derives it and left blank
// when undefined. Returns ErrNoData for an empty snapshot.
func ExportCSV(entries []models.LogEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoData
	}

	var b strings.Builder
	b.WriteString(utf8BOM)
	b.WriteString(csvHeader)
	b.WriteString("\r\n")

	for _, e := range entries {
		b.WriteString(e.Date)
		b.WriteByte(',')
		if e.Weight != nil {
			b.WriteString(strconv.FormatFloat(*e.Weight, 'f', -1, 64))
		}
		b.WriteByte(',')
		b.WriteString(e.ActivityType)
		b.WriteByte(',')
		if e.DurationMinutes != nil {
			b.WriteString(strconv.Itoa(*e.DurationMinutes))
		}
		b.WriteByte(',')
		if cal, ok := metrics.CaloriesForEntry(e, entries); ok {
			b.WriteString(strconv.Itoa(int(math.Round(cal))))
		}
		b.WriteByte(',')
		b.WriteString(quoteNotes(e.Notes))
		b.WriteString("\r\n")
	}

	return []byte(b.String()), nil
}

// quoteNotes always quotes and doubles any internal quotes.
func quoteNotes(notes string) string {
	return `"` + strings.ReplaceAll(notes, `"`, `""`) + `"`
}
