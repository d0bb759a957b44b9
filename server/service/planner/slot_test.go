package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestFindSlotEmptyCalendar(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 7, 0)

	slot, ok := f.FindSlot(time.Hour, nil, nil, now)
	require.True(t, ok)
	assert.Equal(t, now, slot.Start)
	assert.Equal(t, now.Add(time.Hour), slot.End)
}

func TestFindSlotBetweenEvents(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	busy := []Interval{
		{Start: at(2, 8, 0), End: at(2, 9, 0)},
		{Start: at(2, 10, 0), End: at(2, 12, 0)},
	}

	slot, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 9, 0), slot.Start)
	assert.Equal(t, at(2, 10, 0), slot.End)
}

func TestFindSlotBeforeFirstEvent(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 7, 0)
	busy := []Interval{{Start: at(2, 9, 0), End: at(2, 10, 0)}}

	slot, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.Equal(t, now, slot.Start)
}

func TestFindSlotAfterLastEvent(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 30)
	busy := []Interval{
		{Start: at(2, 8, 0), End: at(2, 9, 0)},
		{Start: at(2, 9, 0), End: at(2, 12, 0)},
	}

	slot, ok := f.FindSlot(2*time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 12, 0), slot.Start)
	assert.Equal(t, at(2, 14, 0), slot.End)
}

func TestFindSlotUnsortedInput(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	busy := []Interval{
		{Start: at(2, 10, 0), End: at(2, 12, 0)},
		{Start: at(2, 8, 0), End: at(2, 9, 0)},
	}

	slot, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 9, 0), slot.Start)
	// Caller's slice order is preserved.
	assert.Equal(t, at(2, 10, 0), busy[0].Start)
}

func TestFindSlotNeverInThePast(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 15, 0)
	// Entirely past calendar: the gaps between these events are before
	// now and must not be offered.
	busy := []Interval{
		{Start: at(1, 8, 0), End: at(1, 9, 0)},
		{Start: at(1, 12, 0), End: at(1, 13, 0)},
	}

	slot, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.False(t, slot.Start.Before(now))
}

func TestFindSlotRespectsDeadline(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	deadline := at(2, 10, 0)
	busy := []Interval{{Start: at(2, 8, 0), End: at(2, 9, 30)}}

	// Only 30 minutes remain before the deadline.
	_, ok := f.FindSlot(time.Hour, &deadline, busy, now)
	assert.False(t, ok)

	slot, ok := f.FindSlot(30*time.Minute, &deadline, busy, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 9, 30), slot.Start)
	assert.False(t, slot.End.After(deadline))
}

func TestFindSlotHorizonWithoutDeadline(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	// One solid week of busy time leaves nothing inside the horizon.
	busy := []Interval{{Start: now, End: now.AddDate(0, 0, 8)}}

	_, ok := f.FindSlot(time.Hour, nil, busy, now)
	assert.False(t, ok)
}

func TestFindSlotDoesNotOverlapBusy(t *testing.T) {
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	busy := []Interval{
		{Start: at(2, 8, 30), End: at(2, 10, 0)},
		{Start: at(2, 10, 30), End: at(2, 11, 0)},
		{Start: at(2, 13, 0), End: at(2, 18, 0)},
	}

	for _, d := range []time.Duration{15 * time.Minute, time.Hour, 3 * time.Hour} {
		slot, ok := f.FindSlot(d, nil, busy, now)
		require.True(t, ok)
		for _, iv := range busy {
			assert.False(t, slot.Overlaps(iv), "duration %v: slot %v overlaps %v", d, slot, iv)
		}
	}
}

func TestFindSlotSequentialPlacement(t *testing.T) {
	// Booking the returned slot and searching again yields a disjoint
	// later slot, so repeated scheduling fills the calendar forward.
	f := NewFinder(DefaultOptions())
	now := at(2, 8, 0)
	busy := []Interval{{Start: at(2, 9, 0), End: at(2, 10, 0)}}

	first, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	busy = append(busy, first)

	second, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	assert.False(t, second.Overlaps(first))
	assert.False(t, second.Start.Before(now))
}

func TestBusinessSlotJumpsToMorning(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 6, 30)

	slot, ok := f.FindSlot(time.Hour, nil, nil, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 9, 0), slot.Start)
}

func TestBusinessSlotRollsToNextDay(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 22, 10)

	slot, ok := f.FindSlot(time.Hour, nil, nil, now)
	require.True(t, ok)
	assert.Equal(t, at(3, 9, 0), slot.Start)
}

func TestBusinessSlotKeepsBuffer(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 9, 0)
	busy := []Interval{{Start: at(2, 9, 0), End: at(2, 10, 0)}}

	slot, ok := f.FindSlot(time.Hour, nil, busy, now)
	require.True(t, ok)
	// 15 minutes clearance after the meeting, on the quarter-hour grid.
	assert.Equal(t, at(2, 10, 15), slot.Start)
}

func TestBusinessSlotAlignsToQuarterHour(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 9, 7)

	slot, ok := f.FindSlot(time.Hour, nil, nil, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 9, 15), slot.Start)
	assert.Zero(t, slot.Start.Minute()%15)
}

func TestBusinessSlotNeverSpillsPastClose(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 19, 0)

	slot, ok := f.FindSlot(3*time.Hour, nil, nil, now)
	require.True(t, ok)
	// Three hours do not fit before 21:00, so the slot moves to the
	// next morning.
	assert.Equal(t, at(3, 9, 0), slot.Start)
	assert.Equal(t, at(3, 12, 0), slot.End)
}

func TestBusinessSlotEndingExactlyAtCloseIsAllowed(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 19, 0)

	slot, ok := f.FindSlot(2*time.Hour, nil, nil, now)
	require.True(t, ok)
	assert.Equal(t, at(2, 19, 0), slot.Start)
	assert.Equal(t, at(2, 21, 0), slot.End)
}

func TestBusinessSlotTooLongTerminates(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 9, 0)

	// Longer than any business day; the scan must give up at the
	// horizon instead of looping.
	_, ok := f.FindSlot(13*time.Hour, nil, nil, now)
	assert.False(t, ok)
}

func TestBusinessSlotDeadlineCapped(t *testing.T) {
	f := NewFinder(BusinessHoursOptions())
	now := at(2, 9, 0)
	deadline := at(2, 9, 30)

	_, ok := f.FindSlot(time.Hour, &deadline, nil, now)
	assert.False(t, ok)
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: at(2, 9, 0), End: at(2, 10, 0)}
	b := Interval{Start: at(2, 10, 0), End: at(2, 11, 0)}
	c := Interval{Start: at(2, 9, 30), End: at(2, 10, 30)}

	// Touching endpoints do not conflict.
	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}
