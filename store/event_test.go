package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eventAt(start time.Time, d time.Duration) *Event {
	endTs := start.Add(d).Unix()
	return &Event{StartTs: start.Unix(), EndTs: &endTs}
}

func TestEventConflictWith(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	a := eventAt(base, time.Hour)
	back2back := eventAt(base.Add(time.Hour), time.Hour)
	overlapping := eventAt(base.Add(30*time.Minute), time.Hour)

	// Touching endpoints are not a conflict.
	assert.False(t, a.ConflictWith(back2back))
	assert.False(t, back2back.ConflictWith(a))

	assert.True(t, a.ConflictWith(overlapping))
	assert.True(t, overlapping.ConflictWith(a))
}

func TestEventConflictWithOpenEnd(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// No explicit end: occupies one hour.
	open := &Event{StartTs: base.Unix()}
	within := eventAt(base.Add(30*time.Minute), 10*time.Minute)
	after := eventAt(base.Add(time.Hour), time.Hour)

	assert.True(t, open.ConflictWith(within))
	assert.False(t, open.ConflictWith(after))
}

func TestParseEndTimeNil(t *testing.T) {
	e := &Event{StartTs: time.Now().Unix()}
	assert.Nil(t, e.ParseEndTime())
}
