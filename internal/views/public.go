package views

import (
	"fmt"
	"strings"

	"github.com/Kenway45/TLA-Attendance-site/internal/event"
)

// PublicFragmentPrefix is the fixed prefix of shareable read-only links.
const PublicFragmentPrefix = "#public/"

// PublicRecord is the redacted projection of an attendance record.
// Photos and emails never appear here.
type PublicRecord struct {
	Name        string `json:"name"`
	RegNumber   string `json:"regNumber"`
	ArrivalTime string `json:"arrivalTime"`
	MapURL      string `json:"mapUrl"`
}

// PublicEvent is the read-only event view behind a share link.
type PublicEvent struct {
	Name      string         `json:"name"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Records   []PublicRecord `json:"records"`
}

// Public projects an event for the shareable read-only view.
func Public(evt event.Event) PublicEvent {
	records := make([]PublicRecord, 0, len(evt.AttendanceLog))
	for _, rec := range evt.AttendanceLog {
		records = append(records, PublicRecord{
			Name:        rec.Name,
			RegNumber:   rec.RegNumber,
			ArrivalTime: rec.ArrivalTime,
			MapURL:      fmt.Sprintf("https://www.google.com/maps?q=%v,%v", rec.Location.Lat, rec.Location.Lng),
		})
	}
	return PublicEvent{
		Name:      evt.Name,
		StartTime: evt.StartTime,
		EndTime:   evt.EndTime,
		Records:   records,
	}
}

// ShareLink builds the public URL for an event.
func ShareLink(baseURL, eventID string) string {
	return baseURL + PublicFragmentPrefix + eventID
}

// ParsePublicFragment extracts the event id from a URL fragment. The second
// return is false when the fragment is not a public link at all; an empty id
// with true means a malformed link the caller should reject.
func ParsePublicFragment(fragment string) (string, bool) {
	if !strings.HasPrefix(fragment, PublicFragmentPrefix) {
		return "", false
	}
	return strings.TrimPrefix(fragment, PublicFragmentPrefix), true
}
