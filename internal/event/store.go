package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Blob is the durable key-value slot the event collection persists to.
// Implementations live in internal/storage; tests swap in a memory fake.
type Blob interface {
	// Load returns the stored bytes, or nil when the slot is empty.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Store owns the canonical event collection. Every mutation rewrites the
// whole collection to the blob; the collection is loaded once at startup.
type Store struct {
	mu     sync.Mutex
	events []Event
	blob   Blob
}

// NewStore loads the persisted collection from blob. A missing or corrupt
// blob is logged and treated as an empty collection; the store keeps running.
func NewStore(ctx context.Context, blob Blob) *Store {
	s := &Store{blob: blob}
	data, err := blob.Load(ctx)
	if err != nil {
		log.Printf("event store: load failed, starting empty: %v", err)
		return s
	}
	if len(data) == 0 {
		return s
	}
	if err := json.Unmarshal(data, &s.events); err != nil {
		log.Printf("event store: corrupt blob, starting empty: %v", err)
		s.events = nil
	}
	return s
}

// Create validates the draft and prepends a new inactive event with an
// empty log. The start/end window and radius sign are deliberately not
// validated; an inverted window simply never matches the selectable filter.
func (s *Store) Create(ctx context.Context, draft Draft) (Event, error) {
	switch {
	case draft.Name == "":
		return Event{}, fmt.Errorf("%w: event name required", ErrValidation)
	case draft.StartTime == "" || draft.EndTime == "":
		return Event{}, fmt.Errorf("%w: start and end time required", ErrValidation)
	case draft.Location == nil:
		return Event{}, fmt.Errorf("%w: event location required", ErrValidation)
	}

	evt := Event{
		ID:            uuid.NewString(),
		Name:          draft.Name,
		Location:      draft.Location,
		Radius:        draft.Radius,
		StartTime:     draft.StartTime,
		EndTime:       draft.EndTime,
		IsActive:      false,
		AttendanceLog: []AttendanceRecord{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]Event{evt}, s.events...)
	if err := s.persist(ctx); err != nil {
		s.events = s.events[1:]
		return Event{}, err
	}
	return evt, nil
}

// SetActive toggles the submission gate. Unlike the original, a stale id is
// reported as ErrNotFound instead of being silently ignored.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.events[i].IsActive
	s.events[i].IsActive = active
	if err := s.persist(ctx); err != nil {
		s.events[i].IsActive = prev
		return err
	}
	return nil
}

// AppendRecord prepends rec to the event's log. The duplicate-regNumber
// check happens here, under the store lock, so it is atomic with the insert.
func (s *Store) AppendRecord(ctx context.Context, id string, rec AttendanceRecord) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Event{}, ErrNotFound
	}
	if s.events[i].HasRegistration(rec.RegNumber) {
		return Event{}, ErrDuplicateRegistration
	}
	prev := s.events[i].AttendanceLog
	s.events[i].AttendanceLog = append([]AttendanceRecord{rec}, prev...)
	if err := s.persist(ctx); err != nil {
		s.events[i].AttendanceLog = prev
		return Event{}, err
	}
	return s.snapshot(i), nil
}

// Find returns the event with the given id.
func (s *Store) Find(id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Event{}, ErrNotFound
	}
	return s.snapshot(i), nil
}

// List returns all events, newest-created first.
func (s *Store) List() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	for i := range s.events {
		out[i] = s.snapshot(i)
	}
	return out
}

// index returns the position of id, or -1. Caller holds the lock.
func (s *Store) index(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies the event at i so callers cannot alias the log slice.
// Caller holds the lock.
func (s *Store) snapshot(i int) Event {
	evt := s.events[i]
	evt.AttendanceLog = append([]AttendanceRecord(nil), evt.AttendanceLog...)
	return evt
}

// persist rewrites the full collection. Caller holds the lock.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := s.blob.Save(ctx, data); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	return nil
}
