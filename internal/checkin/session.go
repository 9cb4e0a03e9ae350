package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kenway45/TLA-Attendance-site/internal/event"
	"github.com/Kenway45/TLA-Attendance-site/internal/geo"
)

// State names the steps of a participant's check-in session.
type State string

const (
	StateAwaitingFields   State = "awaiting_fields"
	StateAwaitingLocation State = "awaiting_location"
	StateAwaitingPhoto    State = "awaiting_photo"
	StateReadyToSubmit    State = "ready_to_submit"
	StateSubmitted        State = "submitted"
)

// ErrSessionNotFound is returned for unknown or acknowledged sessions.
var ErrSessionNotFound = errors.New("session not found")

// GeofenceError reports a rejected location fix with the measured distance.
// Not a state change: the participant may retry any number of times.
type GeofenceError struct {
	Distance float64 // meters; -1 when the event has no location configured
}

func (e *GeofenceError) Error() string {
	if e.Distance < 0 {
		return "the selected event does not have a location set"
	}
	return fmt.Sprintf("location does not match the venue, you are %.0fm away", e.Distance)
}

// Session is one participant's in-flight check-in. Nothing here is
// persisted; a validation failure leaves the event store untouched.
type Session struct {
	ID        string        `json:"id"`
	EventID   string        `json:"eventId"`
	EventName string        `json:"eventName"`
	State     State         `json:"state"`
	Name      string        `json:"name"`
	RegNumber string        `json:"regNumber"`
	Email     string        `json:"email"`
	Location  *geo.Location `json:"location,omitempty"`
	HasPhoto  bool          `json:"hasPhoto"`
	Receipt   *Receipt      `json:"receipt,omitempty"`

	photo         string
	locationValid bool
}

// Receipt is the confirmation payload shown after a successful submission.
type Receipt struct {
	Record    event.AttendanceRecord `json:"record"`
	EventName string                 `json:"eventName"`
}

// Uploader offloads a captured selfie and returns an opaque reference.
type Uploader interface {
	UploadSelfie(data string) (string, error)
}

// Manager drives the per-participant submission workflow against the store.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	store       *event.Store
	emailDomain string
	uploader    Uploader // nil when selfie offload is not configured
}

// NewManager wires the workflow. emailDomain is the required suffix for
// participant emails, checked case-sensitively.
func NewManager(store *event.Store, emailDomain string, uploader Uploader) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		store:       store,
		emailDomain: emailDomain,
		uploader:    uploader,
	}
}

// Selectable returns events currently open for check-ins: isActive must be
// set AND now must fall inside the time window. Neither alone is enough.
func (m *Manager) Selectable() []event.Event {
	now := time.Now()
	var out []event.Event
	for _, evt := range m.store.List() {
		if evt.AcceptsSubmissions(now) {
			out = append(out, evt)
		}
	}
	return out
}

// Start opens a session against a selectable event.
func (m *Manager) Start(eventID string) (Session, error) {
	evt, err := m.store.Find(eventID)
	if err != nil {
		return Session{}, err
	}
	if !evt.AcceptsSubmissions(time.Now()) {
		return Session{}, fmt.Errorf("%w: event is not open for attendance", event.ErrValidation)
	}
	s := &Session{
		ID:        uuid.NewString(),
		EventID:   evt.ID,
		EventName: evt.Name,
		State:     StateAwaitingFields,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return *s, nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// SetFields records the participant's details. Values may be revised any
// time before submission; completeness is what advances the state.
func (m *Manager) SetFields(sessionID, name, regNumber, email string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	s.Name = name
	s.RegNumber = regNumber
	s.Email = email
	s.advance()
	return *s, nil
}

// CheckLocation validates a device fix against the event's geofence. The
// boundary is inclusive; a rejection carries the measured distance and the
// participant may retry. An event without a location fails closed.
func (m *Manager) CheckLocation(sessionID string, candidate geo.Location) (Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	eventID := s.EventID
	m.mu.Unlock()

	evt, err := m.store.Find(eventID)
	if err != nil {
		return Session{}, err
	}
	inside, distance := evt.Fence().Check(candidate)
	if !inside {
		return Session{}, &GeofenceError{Distance: distance}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	loc := candidate
	s.Location = &loc
	s.locationValid = true
	s.advance()
	return *s, nil
}

// AttachPhoto holds the captured selfie in memory until submission or retake.
func (m *Manager) AttachPhoto(sessionID, data string) (Session, error) {
	if data == "" {
		return Session{}, fmt.Errorf("%w: photo data required", event.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	s.photo = data
	s.HasPhoto = true
	s.advance()
	return *s, nil
}

// RetakePhoto discards the held selfie; the client reopens its capture device.
func (m *Manager) RetakePhoto(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	s.photo = ""
	s.HasPhoto = false
	s.advance()
	return *s, nil
}

// Submit re-checks every precondition and appends the record. Failures are
// transient: no store mutation, no session state change, manual retry.
func (m *Manager) Submit(ctx context.Context, sessionID string) (Receipt, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Receipt{}, ErrSessionNotFound
	}
	snapshot := *s
	photo := s.photo
	locationValid := s.locationValid
	m.mu.Unlock()

	if snapshot.Name == "" || snapshot.RegNumber == "" || snapshot.Email == "" ||
		snapshot.Location == nil || !locationValid || photo == "" {
		return Receipt{}, fmt.Errorf("%w: fill all fields, get a valid location, and take a photo", event.ErrValidation)
	}
	if !strings.HasSuffix(snapshot.Email, m.emailDomain) {
		return Receipt{}, fmt.Errorf("%w: email must end in %s", event.ErrValidation, m.emailDomain)
	}

	if m.uploader != nil {
		url, err := m.uploader.UploadSelfie(photo)
		if err != nil {
			return Receipt{}, fmt.Errorf("selfie upload failed: %w", err)
		}
		photo = url
	}

	rec := event.AttendanceRecord{
		Name:        snapshot.Name,
		RegNumber:   snapshot.RegNumber,
		Email:       snapshot.Email,
		Location:    *snapshot.Location,
		Photo:       photo,
		ArrivalTime: time.Now().Format("1/2/2006, 3:04:05 PM"),
	}
	evt, err := m.store.AppendRecord(ctx, snapshot.EventID, rec)
	if err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{Record: rec, EventName: evt.Name}

	// Form resets to idle; the receipt stays on the session until the
	// participant acknowledges it.
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		s.Name, s.RegNumber, s.Email = "", "", ""
		s.Location = nil
		s.locationValid = false
		s.photo = ""
		s.HasPhoto = false
		s.State = StateSubmitted
		s.Receipt = &receipt
	}
	m.mu.Unlock()
	return receipt, nil
}

// Acknowledge ends the session, returning the participant to event selection.
func (m *Manager) Acknowledge(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// advance recomputes the pre-submit state from what the session holds.
// Caller holds the lock.
func (s *Session) advance() {
	if s.State == StateSubmitted {
		return
	}
	switch {
	case s.Name == "" || s.RegNumber == "" || s.Email == "":
		s.State = StateAwaitingFields
	case !s.locationValid:
		s.State = StateAwaitingLocation
	case s.photo == "":
		s.State = StateAwaitingPhoto
	default:
		s.State = StateReadyToSubmit
	}
}
