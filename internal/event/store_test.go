package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Kenway45/TLA-Attendance-site/internal/event"
	"github.com/Kenway45/TLA-Attendance-site/internal/geo"
	"github.com/Kenway45/TLA-Attendance-site/internal/store"
)

type StoreSuite struct {
	suite.Suite
	blob  *store.MemoryBlob
	store *event.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.blob = store.NewMemoryBlob()
	s.ctx = context.Background()
	s.store = event.NewStore(s.ctx, s.blob)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) draft(name string) event.Draft {
	return event.Draft{
		Name:      name,
		Location:  &geo.Location{Lat: 12.34, Lng: 56.78},
		Radius:    50,
		StartTime: time.Now().Add(-time.Hour).Format(time.RFC3339),
		EndTime:   time.Now().Add(time.Hour).Format(time.RFC3339),
	}
}

func (s *StoreSuite) record(reg string) event.AttendanceRecord {
	return event.AttendanceRecord{
		Name:        "Asha",
		RegNumber:   reg,
		Email:       "asha.k2023@vitstudent.ac.in",
		Location:    geo.Location{Lat: 12.3401, Lng: 56.78},
		Photo:       "data:image/jpeg;base64,/9j/4AAQ",
		ArrivalTime: "8/31/2026, 10:15:00 AM",
	}
}

func (s *StoreSuite) TestCreateValidation() {
	cases := []struct {
		name  string
		draft event.Draft
	}{
		{"missing name", event.Draft{Location: &geo.Location{}, StartTime: "a", EndTime: "b"}},
		{"missing times", event.Draft{Name: "X", Location: &geo.Location{}}},
		{"missing location", event.Draft{Name: "X", StartTime: "a", EndTime: "b"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.store.Create(s.ctx, tc.draft)
			s.Require().ErrorIs(err, event.ErrValidation)
			s.Empty(s.store.List(), "no event created on validation error")
		})
	}
}

func (s *StoreSuite) TestCreateDefaults() {
	evt, err := s.store.Create(s.ctx, s.draft("Orientation"))
	s.Require().NoError(err)
	s.NotEmpty(evt.ID)
	s.False(evt.IsActive, "events start inactive")
	s.Empty(evt.AttendanceLog)
}

func (s *StoreSuite) TestListNewestFirst() {
	first, err := s.store.Create(s.ctx, s.draft("First"))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.draft("Second"))
	s.Require().NoError(err)

	list := s.store.List()
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
}

func (s *StoreSuite) TestSetActive() {
	evt, err := s.store.Create(s.ctx, s.draft("Orientation"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.SetActive(s.ctx, evt.ID, true))
	found, err := s.store.Find(evt.ID)
	s.Require().NoError(err)
	s.True(found.IsActive)

	s.Run("unknown id is reported, not ignored", func() {
		s.Require().ErrorIs(s.store.SetActive(s.ctx, "nope", true), event.ErrNotFound)
	})
}

func (s *StoreSuite) TestAppendRecord() {
	evt, err := s.store.Create(s.ctx, s.draft("Orientation"))
	s.Require().NoError(err)

	s.Run("prepends most-recent-first", func() {
		_, err := s.store.AppendRecord(s.ctx, evt.ID, s.record("21BCE0001"))
		s.Require().NoError(err)
		updated, err := s.store.AppendRecord(s.ctx, evt.ID, s.record("21BCE0002"))
		s.Require().NoError(err)

		s.Require().Len(updated.AttendanceLog, 2)
		s.Equal("21BCE0002", updated.AttendanceLog[0].RegNumber)
		s.Equal("21BCE0001", updated.AttendanceLog[1].RegNumber)
	})

	s.Run("rejects duplicate regNumber, log unchanged", func() {
		_, err := s.store.AppendRecord(s.ctx, evt.ID, s.record("21BCE0001"))
		s.Require().ErrorIs(err, event.ErrDuplicateRegistration)

		found, err := s.store.Find(evt.ID)
		s.Require().NoError(err)
		s.Len(found.AttendanceLog, 2)
	})

	s.Run("unknown event", func() {
		_, err := s.store.AppendRecord(s.ctx, "nope", s.record("21BCE0009"))
		s.Require().ErrorIs(err, event.ErrNotFound)
	})
}

func (s *StoreSuite) TestFindUnknown() {
	_, err := s.store.Find("missing")
	s.Require().ErrorIs(err, event.ErrNotFound)
}

// TestRoundTrip reloads the collection from the same blob and expects a
// structurally equal collection.
func (s *StoreSuite) TestRoundTrip() {
	evt, err := s.store.Create(s.ctx, s.draft("Orientation"))
	s.Require().NoError(err)
	s.Require().NoError(s.store.SetActive(s.ctx, evt.ID, true))
	_, err = s.store.AppendRecord(s.ctx, evt.ID, s.record("21BCE0001"))
	s.Require().NoError(err)

	reloaded := event.NewStore(s.ctx, s.blob)
	s.Equal(s.store.List(), reloaded.List())
}

// TestCorruptBlobFailsSoft expects an unreadable blob to be treated as an
// empty collection, not a crash.
func (s *StoreSuite) TestCorruptBlobFailsSoft() {
	s.Require().NoError(s.blob.Save(s.ctx, []byte("{not json")))

	st := event.NewStore(s.ctx, s.blob)
	s.Empty(st.List())

	_, err := st.Create(s.ctx, s.draft("Recovered"))
	s.Require().NoError(err, "store keeps working after a corrupt load")
}

func (s *StoreSuite) TestPermissiveWindowAndRadius() {
	draft := s.draft("Inverted")
	draft.StartTime, draft.EndTime = draft.EndTime, draft.StartTime
	draft.Radius = -5

	evt, err := s.store.Create(s.ctx, draft)
	s.Require().NoError(err, "inverted window and negative radius are accepted as-is")
	s.Require().NoError(s.store.SetActive(s.ctx, evt.ID, true))

	activated, err := s.store.Find(evt.ID)
	s.Require().NoError(err)
	s.False(activated.AcceptsSubmissions(time.Now()), "an inverted window never matches")
}
