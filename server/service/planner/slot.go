package planner

import (
	"sort"
	"time"

	"github.com/notemind/notemind/store"
)

const (
	businessDayStartHour = 9
	businessDayEndHour   = 21

	defaultHorizonDays   = 7
	businessHorizonDays  = 30
	defaultBufferMinutes = 15

	// slotAlignStep is the grid candidate start times snap to in
	// business-hours mode.
	slotAlignStep = 15 * time.Minute
)

// Interval is a half-open [Start, End) span of busy or proposed time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two intervals intersect under the
// [start, end) convention. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the span length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Options configures slot search behavior.
type Options struct {
	// BusinessHours restricts candidate slots to 09:00-21:00 and aligns
	// starts to the quarter-hour grid.
	BusinessHours bool
	// BufferMinutes keeps this much clearance on both sides of existing
	// events. Only honored in business-hours mode.
	BufferMinutes int
	// HorizonDays bounds the search when the task carries no deadline.
	HorizonDays int
}

// DefaultOptions is the relaxed first-fit search used for quick
// scheduling: any hour of day, no clearance, one week out.
func DefaultOptions() Options {
	return Options{HorizonDays: defaultHorizonDays}
}

// BusinessHoursOptions is the humane variant: daytime only, breathing
// room around existing events, up to a month out.
func BusinessHoursOptions() Options {
	return Options{
		BusinessHours: true,
		BufferMinutes: defaultBufferMinutes,
		HorizonDays:   businessHorizonDays,
	}
}

// Finder locates the earliest free interval that fits a duration into
// an existing calendar.
type Finder struct {
	opts Options
}

func NewFinder(opts Options) *Finder {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = defaultHorizonDays
	}
	return &Finder{opts: opts}
}

// FindSlot returns the earliest interval of length d that starts no
// earlier than now, conflicts with no busy interval, and ends by the
// deadline (or the search horizon when no deadline is given). The busy
// slice is not modified. Returns ok=false when no such interval exists.
func (f *Finder) FindSlot(d time.Duration, deadline *time.Time, busy []Interval, now time.Time) (Interval, bool) {
	if d <= 0 {
		d = defaultTaskDuration
	}

	windowEnd := now.AddDate(0, 0, f.opts.HorizonDays)
	if deadline != nil {
		if f.opts.BusinessHours {
			// The horizon caps even explicit deadlines so a deadline
			// years out cannot make the scan unbounded.
			if deadline.Before(windowEnd) {
				windowEnd = *deadline
			}
		} else {
			windowEnd = *deadline
		}
	}

	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	if f.opts.BusinessHours {
		return f.findBusinessSlot(d, sorted, now, windowEnd)
	}
	return f.findFirstFit(d, sorted, now, windowEnd)
}

// findFirstFit scans the gaps of the sorted calendar in order: before
// the first event, between adjacent events, after the last one. Gap
// starts are clamped to now so a calendar full of past events cannot
// yield a slot in the past. Candidates are monotonically later, so the
// first one past the window ends the search.
func (f *Finder) findFirstFit(d time.Duration, sorted []Interval, now, windowEnd time.Time) (Interval, bool) {
	if len(sorted) == 0 {
		end := now.Add(d)
		if end.After(windowEnd) {
			return Interval{}, false
		}
		return Interval{Start: now, End: end}, true
	}

	end := now.Add(d)
	if end.After(windowEnd) {
		return Interval{}, false
	}
	if !end.After(sorted[0].Start) {
		return Interval{Start: now, End: end}, true
	}

	for i := 0; i < len(sorted)-1; i++ {
		start := laterOf(sorted[i].End, now)
		end := start.Add(d)
		if end.After(windowEnd) {
			return Interval{}, false
		}
		if !end.After(sorted[i+1].Start) {
			return Interval{Start: start, End: end}, true
		}
	}

	start := laterOf(sorted[len(sorted)-1].End, now)
	end = start.Add(d)
	if end.After(windowEnd) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// findBusinessSlot advances a cursor through the calendar, skipping
// hours outside 09:00-21:00 and keeping the configured clearance around
// busy intervals. The cursor only moves forward, so the loop terminates
// once it crosses the window end.
func (f *Finder) findBusinessSlot(d time.Duration, sorted []Interval, now, windowEnd time.Time) (Interval, bool) {
	buffer := time.Duration(f.opts.BufferMinutes) * time.Minute
	cursor := alignUp(now, slotAlignStep)

	for {
		if cursor.Add(d).After(windowEnd) {
			return Interval{}, false
		}

		if cursor.Hour() < businessDayStartHour {
			cursor = dayStartAt(cursor, businessDayStartHour)
			continue
		}
		if cursor.Hour() >= businessDayEndHour {
			cursor = dayStartAt(cursor.AddDate(0, 0, 1), businessDayStartHour)
			continue
		}

		end := cursor.Add(d)
		// A slot may end exactly at close, never after it.
		if end.After(dayStartAt(cursor, businessDayEndHour)) {
			cursor = dayStartAt(cursor.AddDate(0, 0, 1), businessDayStartHour)
			continue
		}

		conflicted := false
		for _, iv := range sorted {
			padded := Interval{Start: iv.Start.Add(-buffer), End: iv.End.Add(buffer)}
			if padded.Overlaps(Interval{Start: cursor, End: end}) {
				cursor = alignUp(padded.End, slotAlignStep)
				conflicted = true
				break
			}
		}
		if conflicted {
			continue
		}
		return Interval{Start: cursor, End: end}, true
	}
}

// BusyIntervals projects stored events onto busy intervals, assuming a
// one-hour span for events without an explicit end.
func BusyIntervals(events []*store.Event) []Interval {
	intervals := make([]Interval, 0, len(events))
	for _, e := range events {
		start := e.ParseStartTime()
		end := e.ParseEndTime()
		if end == nil {
			t := start.Add(time.Hour)
			end = &t
		}
		intervals = append(intervals, Interval{Start: start, End: *end})
	}
	return intervals
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// alignUp rounds t up to the next multiple of step, leaving already
// aligned values untouched.
func alignUp(t time.Time, step time.Duration) time.Time {
	truncated := t.Truncate(step)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(step)
}

// dayStartAt returns t's calendar day at the given whole hour.
func dayStartAt(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
