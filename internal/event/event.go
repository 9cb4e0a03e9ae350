package event

import (
	"errors"
	"time"

	"github.com/Kenway45/TLA-Attendance-site/internal/geo"
)

// Sentinel errors surfaced by the store. Handlers translate these to
// user-facing responses; none are fatal.
var (
	ErrNotFound              = errors.New("event not found")
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateRegistration = errors.New("registration number already submitted for this event")
)

// AttendanceRecord is one participant's check-in. Immutable once appended.
type AttendanceRecord struct {
	Name      string       `json:"name"`
	RegNumber string       `json:"regNumber"`
	Email     string       `json:"email"`
	Location  geo.Location `json:"location"`
	// Photo is an opaque image reference: either an inline base64 data URL
	// or a CDN URL when an uploader is configured.
	Photo string `json:"photo"`
	// ArrivalTime is a locale-formatted wall-clock string, not sortable.
	// Display order is insertion order, so that is acceptable.
	ArrivalTime string `json:"arrivalTime"`
}

// Event is an admin-defined attendance session.
type Event struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Location  *geo.Location `json:"location"`
	Radius    float64       `json:"radius"`    // meters
	StartTime string        `json:"startTime"` // ISO-8601
	EndTime   string        `json:"endTime"`   // ISO-8601
	IsActive  bool          `json:"isActive"`
	// AttendanceLog is most-recent-first; grows strictly by prepend.
	AttendanceLog []AttendanceRecord `json:"attendanceLog"`
}

// Fence returns the event's geofence. Events created through the store
// always have a location, but the fence fails closed if one is missing.
func (e Event) Fence() geo.Fence {
	return geo.Fence{Center: e.Location, Radius: e.Radius}
}

// AcceptsSubmissions reports whether the event is open for check-ins at t:
// the admin toggle must be on AND t must fall inside [start, end]. Neither
// alone is sufficient. Unparseable timestamps never match.
func (e Event) AcceptsSubmissions(t time.Time) bool {
	if !e.IsActive {
		return false
	}
	start, err := time.Parse(time.RFC3339, e.StartTime)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, e.EndTime)
	if err != nil {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

// HasRegistration reports whether regNumber already appears in the log.
func (e Event) HasRegistration(regNumber string) bool {
	for _, rec := range e.AttendanceLog {
		if rec.RegNumber == regNumber {
			return true
		}
	}
	return false
}

// Draft carries the fields required to create an event.
type Draft struct {
	Name      string        `json:"name"`
	Location  *geo.Location `json:"location"`
	Radius    float64       `json:"radius"`
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
}
