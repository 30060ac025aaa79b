/*
calendar.go - View filtering and the month grid

PURPOSE:
  Answers the two display questions the schedule board asks:
  "which events belong to the current view?" and "how many events start on
  each cell of the calendar grid?".

VIEW MODES:
  day   - events on the reference date's calendar day
  week  - events in the Sunday-to-Saturday week containing the reference
  month - events sharing the reference's calendar year and month

MONTH GRID:
  The calendar renders a fixed 6x7 grid (42 cells) beginning on the Sunday
  on or before the 1st of the month. CountByDay keys counts by grid day so
  the UI can place badges without redoing date math.

RECOMPUTATION:
  Both operations recompute from the full event snapshot on every call.
  Nothing is cached across mutations; a refetch simply calls again.
*/
package schedule

import (
	"sort"
	"time"
)

// ViewMode selects the date window for FilterByView.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// GridCells is the size of the rendered month grid: six full weeks.
const GridCells = 42

// FilterByView returns the events visible in the given view around ref,
// sorted ascending by date. The input slice is not modified. Unknown view
// modes fall back to the month view, matching the board's default.
func FilterByView(events []Event, ref time.Time, mode ViewMode) []Event {
	var keep func(Event) bool
	switch mode {
	case ViewDay:
		keep = func(e Event) bool { return SameDay(e.Date, ref) }
	case ViewWeek:
		keep = func(e Event) bool { return SameWeek(e.Date, ref) }
	default:
		keep = func(e Event) bool { return SameMonth(e.Date, ref) }
	}

	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	return filtered
}

// MonthGrid returns the 42 calendar days displayed for ref's month,
// starting on the Sunday on or before the 1st. Each entry is a midnight in
// ref's location.
func MonthGrid(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]time.Time, GridCells)
	for i := range days {
		days[i] = gridStart.AddDate(0, 0, i)
	}
	return days
}

// CountByDay maps each day of ref's month grid to the number of events
// starting that day. Days with no events are omitted. Display only; conflict
// logic never consults this.
func CountByDay(events []Event, ref time.Time) map[time.Time]int {
	counts := make(map[time.Time]int)
	for _, day := range MonthGrid(ref) {
		for _, e := range events {
			if SameDay(e.Date, day) {
				counts[day]++
			}
		}
	}
	return counts
}
