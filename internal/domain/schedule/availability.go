package schedule

import (
	"time"
)

// Slot is one fixed-duration unit of a coach's nominal working window on a
// given day. Slots are derived values: they are recomputed on every query and
// never persisted or cached across booking-state changes.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Free  bool      `json:"free"`
}

// Range returns the slot's interval.
func (s Slot) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// WorkingWindow is the policy describing a coach's nominal bookable hours and
// the slot granularity used to partition them.
type WorkingWindow struct {
	StartHour   int
	EndHour     int
	Granularity time.Duration
}

// DefaultWorkingWindow is the 06:00-22:00 window at 30-minute granularity.
func DefaultWorkingWindow() WorkingWindow {
	return WorkingWindow{StartHour: 6, EndHour: 22, Granularity: 30 * time.Minute}
}

// WithGranularity returns a copy of the window using the given slot size.
func (w WorkingWindow) WithGranularity(g time.Duration) WorkingWindow {
	w.Granularity = g
	return w
}

// DayRange returns the window's interval on the calendar day containing day.
func (w WorkingWindow) DayRange(day time.Time) TimeRange {
	y, m, d := day.Date()
	start := time.Date(y, m, d, w.StartHour, 0, 0, 0, day.Location())
	end := time.Date(y, m, d, w.EndHour, 0, 0, 0, day.Location())
	return TimeRange{Start: start, End: end}
}

// GenerateSlots partitions the window on the given day into granularity-sized
// slots and classifies each against the busy intervals (active bookings and
// blackouts). A slot is free unless it overlaps at least one busy interval;
// busy intervals that merely touch a slot boundary do not block it.
func (w WorkingWindow) GenerateSlots(day time.Time, busy []TimeRange) []Slot {
	window := w.DayRange(day)

	var slots []Slot
	for start := window.Start; start.Before(window.End); start = start.Add(w.Granularity) {
		end := start.Add(w.Granularity)
		if end.After(window.End) {
			break
		}
		slot := Slot{Start: start, End: end, Free: true}
		for _, b := range busy {
			if slot.Range().Overlaps(b) {
				slot.Free = false
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// IntersectFree combines per-coach slot sets for the same day and window: the
// result marks a slot free only if it is free for every coach. Slot sets must
// come from the same window so positions line up.
func IntersectFree(slotSets ...[]Slot) []Slot {
	if len(slotSets) == 0 {
		return nil
	}

	result := make([]Slot, len(slotSets[0]))
	copy(result, slotSets[0])
	for _, set := range slotSets[1:] {
		for i := range result {
			if i < len(set) && !set[i].Free {
				result[i].Free = false
			}
		}
	}
	return result
}
