package reviewstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
)

// Stamper turns drafts into reviews. Timestamps from one Stamper strictly increase
// even when the wall clock stalls or steps back.
type Stamper struct {
	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	last int64
}

// NewStamper uses the wall clock and random UUIDs.
func NewStamper() *Stamper {
	return &Stamper{now: time.Now, newID: uuid.NewString}
}

// NewStamperWithClock is NewStamper with an injected clock.
func NewStamperWithClock(now func() time.Time) *Stamper {
	return &Stamper{now: now, newID: uuid.NewString}
}

// Stamp assigns a fresh id and timestamp to draft.
func (s *Stamper) Stamp(draft model.ReviewDraft) model.Review {
	return model.Review{
		ID:        s.newID(),
		Nickname:  draft.Nickname,
		Rating:    draft.Rating,
		Comment:   draft.Comment,
		Timestamp: s.next(),
	}
}

func (s *Stamper) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}
