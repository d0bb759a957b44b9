package store

import (
	"context"
	"time"
)

// EventKind tags how an event came to exist.
type EventKind string

const (
	// EventKindOrdinary is a user-authored or planner-scheduled entry.
	EventKindOrdinary EventKind = "ORDINARY"
	// EventKindTravelOut is a derived outbound travel bracket.
	EventKindTravelOut EventKind = "TRAVEL_OUT"
	// EventKindTravelBack is a derived return travel bracket.
	EventKindTravelBack EventKind = "TRAVEL_BACK"
)

func (k EventKind) String() string {
	return string(k)
}

// Event is a time-bound calendar entry. Intervals use closed-open
// [start, end) semantics; events of one user must not overlap, which the
// planner enforces at creation time. Pre-existing overlaps from external
// sources are tolerated as committed state.
type Event struct {
	ID        int32
	UID       string
	CreatorID int32
	CreatedTs int64

	Title   string
	StartTs int64
	// EndTs is nil for entries stated without an explicit end, e.g.
	// "созвон завтра в 10". Consumers assume a one-hour span.
	EndTs    *int64
	Location string
	Kind     EventKind
}

// FindEvent is the find condition for event.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	Kind      *EventKind

	// Time range filters on start_ts.
	StartTsAfter  *int64
	StartTsBefore *int64

	Limit  *int
	Offset *int
}

// DeleteEvent is the delete request for event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events with filter, ordered by start_ts ascending.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// DeleteEvent deletes an event.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}

// ParseStartTime parses the event start time to time.Time.
func (e *Event) ParseStartTime() time.Time {
	return time.Unix(e.StartTs, 0)
}

// ParseEndTime parses the event end time to time.Time. Returns nil when
// the event has no explicit end.
func (e *Event) ParseEndTime() *time.Time {
	if e.EndTs == nil {
		return nil
	}
	t := time.Unix(*e.EndTs, 0)
	return &t
}

// ConflictWith reports whether the two events overlap under the
// [start, end) convention. Events without an explicit end are treated as
// one-hour spans.
func (e *Event) ConflictWith(other *Event) bool {
	eEnd := e.effectiveEndTs()
	otherEnd := other.effectiveEndTs()
	return e.StartTs < otherEnd && other.StartTs < eEnd
}

func (e *Event) effectiveEndTs() int64 {
	if e.EndTs != nil {
		return *e.EndTs
	}
	return e.StartTs + int64(time.Hour.Seconds())
}
