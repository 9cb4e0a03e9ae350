package views

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"

	"github.com/Kenway45/TLA-Attendance-site/internal/event"
)

// SearchLog filters a log by case-insensitive substring over name and
// regNumber. An empty term returns the log unchanged.
func SearchLog(records []event.AttendanceRecord, term string) []event.AttendanceRecord {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	var out []event.AttendanceRecord
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) ||
			strings.Contains(strings.ToLower(rec.RegNumber), needle) {
			out = append(out, rec)
		}
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// CSVFilename derives the export filename from the event name, whitespace
// collapsed to underscores.
func CSVFilename(eventName string) string {
	return whitespace.ReplaceAllString(eventName, "_") + "_attendance.csv"
}

// ExportCSV renders the full attendance log. Embedded double quotes in text
// fields are escaped by doubling, per RFC 4180.
func ExportCSV(evt event.Event) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Registration Number", "Email", "Arrival Time", "Latitude", "Longitude"}); err != nil {
		return nil, err
	}
	for _, rec := range evt.AttendanceLog {
		row := []string{
			rec.Name,
			rec.RegNumber,
			rec.Email,
			rec.ArrivalTime,
			strconv.FormatFloat(rec.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(rec.Location.Lng, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
