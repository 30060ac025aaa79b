/*
Package schedule provides the appointment scheduling engine.

PURPOSE:
  Contains the pure, side-effect free logic behind the clinic's appointment
  board: interval conflict detection, day/week/month view filtering, and the
  per-day counts that drive the calendar grid. The package never touches
  storage; callers hand it a snapshot of events and read back plain data.

KEY CONCEPTS IN THIS FILE (event.go):
  - Event: A scheduled appointment with a start instant and a duration
  - Calendar-day helpers: SameDay, SameWeek, SameMonth, WeekRange

DESIGN PRINCIPLES:
  1. Purity: every function is a function of its inputs, nothing else
  2. Local time: "same day" means the same wall-clock calendar day
  3. Snapshots: callers pass the full event set; nothing is memoized

SEE ALSO:
  - conflict.go: Overlap detection and the override decision
  - calendar.go: View filtering and the month grid
*/
package schedule

import "time"

// Event is a scheduled appointment. Duration is in minutes.
// Events are created and deleted, never rescheduled in place.
type Event struct {
	ID       string
	Title    string
	Date     time.Time
	Duration int
	Public   bool
}

// Start returns the event's start instant.
func (e Event) Start() time.Time { return e.Date }

// End returns the exclusive end instant: start + duration.
func (e Event) End() time.Time {
	return e.Date.Add(time.Duration(e.Duration) * time.Minute)
}

// =============================================================================
// CALENDAR-DAY HELPERS - All comparisons use local wall-clock components
// =============================================================================

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// WeekRange returns the Sunday-to-Saturday week containing ref.
// The start is the midnight of the Sunday on or before ref; the end is the
// midnight of the following Saturday.
func WeekRange(ref time.Time) (start, end time.Time) {
	start = StartOfDay(ref).AddDate(0, 0, -int(ref.Weekday()))
	end = start.AddDate(0, 0, 6)
	return start, end
}

// SameWeek reports whether t falls within the Sunday-to-Saturday week
// containing ref.
func SameWeek(t, ref time.Time) bool {
	start, end := WeekRange(ref)
	day := StartOfDay(t)
	return !day.Before(start) && !day.After(end)
}

// StartOfDay truncates t to midnight, preserving its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
