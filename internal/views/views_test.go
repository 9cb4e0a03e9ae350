package views

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenway45/TLA-Attendance-site/internal/event"
	"github.com/Kenway45/TLA-Attendance-site/internal/geo"
)

func sampleEvent() event.Event {
	return event.Event{
		ID:        "evt-1",
		Name:      "Orientation Day 2026",
		Location:  &geo.Location{Lat: 12.34, Lng: 56.78},
		Radius:    50,
		StartTime: "2026-08-31T09:00:00Z",
		EndTime:   "2026-08-31T17:00:00Z",
		IsActive:  true,
		AttendanceLog: []event.AttendanceRecord{
			{
				Name:        `Asha "Ash" Kumar`,
				RegNumber:   "21BCE0001",
				Email:       "asha.k2023@vitstudent.ac.in",
				Location:    geo.Location{Lat: 12.3401, Lng: 56.7799},
				Photo:       "data:image/jpeg;base64,/9j/4AAQ",
				ArrivalTime: "8/31/2026, 10:15:00 AM",
			},
			{
				Name:        "Ravi Menon",
				RegNumber:   "21BCE0002",
				Email:       "ravi.m2023@vitstudent.ac.in",
				Location:    geo.Location{Lat: 12.34, Lng: 56.78},
				Photo:       "https://cdn.example/ravi.jpg",
				ArrivalTime: "8/31/2026, 10:20:00 AM",
			},
		},
	}
}

func TestPublicProjectionRedacts(t *testing.T) {
	pub := Public(sampleEvent())

	require.Len(t, pub.Records, 2)
	assert.Equal(t, `Asha "Ash" Kumar`, pub.Records[0].Name)
	assert.Equal(t, "21BCE0001", pub.Records[0].RegNumber)
	assert.Contains(t, pub.Records[0].MapURL, "google.com/maps?q=12.3401,56.7799")

	// Nothing in the serialized projection may carry a photo or email.
	data, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "vitstudent.ac.in")
	assert.NotContains(t, string(data), "base64")
	assert.NotContains(t, string(data), "cdn.example")
}

func TestParsePublicFragment(t *testing.T) {
	id, ok := ParsePublicFragment("#public/evt-1")
	assert.True(t, ok)
	assert.Equal(t, "evt-1", id)

	_, ok = ParsePublicFragment("#admin")
	assert.False(t, ok)

	_, ok = ParsePublicFragment("")
	assert.False(t, ok)
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "https://att.example/#public/evt-1", ShareLink("https://att.example/", "evt-1"))
}

func TestSearchLog(t *testing.T) {
	log := sampleEvent().AttendanceLog

	assert.Len(t, SearchLog(log, ""), 2)
	assert.Len(t, SearchLog(log, "RAVI"), 1, "search is case-insensitive")
	assert.Len(t, SearchLog(log, "21bce"), 2, "regNumber matches too")
	assert.Empty(t, SearchLog(log, "nobody"))
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "Orientation_Day_2026_attendance.csv", CSVFilename("Orientation Day 2026"))
	assert.Equal(t, "a_b_attendance.csv", CSVFilename("a \t b"))
}

// TestExportCSVEscaping round-trips an embedded double quote through a CSV
// reader and expects the original string back.
func TestExportCSVEscaping(t *testing.T) {
	data, err := ExportCSV(sampleEvent())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Name", "Registration Number", "Email", "Arrival Time", "Latitude", "Longitude"}, rows[0])
	assert.Equal(t, `Asha "Ash" Kumar`, rows[1][0])
	assert.Equal(t, "12.3401", rows[1][4])
	assert.Equal(t, "56.7799", rows[1][5])
}
