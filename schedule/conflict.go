/*
conflict.go - Appointment overlap detection

PURPOSE:
  Decides whether a candidate appointment overlaps an existing one. The
  overlap test is half-open: [start, start+duration). Two events that merely
  touch (one ends exactly when the other starts) do NOT conflict.

SCOPE RULE:
  Only events starting on the same calendar day as the candidate are
  considered. An event at 23:50 that runs past midnight does not conflict
  with one at 00:10 the next day. This mirrors how the front desk reads the
  daily schedule sheet; it is a deliberate simplification, not an oversight.

OVERRIDE FLOW:
  A detected conflict is not a hard error. The caller surfaces it and asks
  for an explicit Decision; DecisionProceed saves the event anyway and the
  stored record is indistinguishable from a non-conflicting one.

SEE ALSO:
  - event.go: Event type and day helpers
  - clinic/scheduleboard.go: The stateful flow that consumes Decision
*/
package schedule

// Decision is the user's answer to a detected conflict.
type Decision string

const (
	// DecisionProceed saves the candidate despite the overlap.
	DecisionProceed Decision = "proceed"

	// DecisionCancel abandons the candidate; nothing is persisted.
	DecisionCancel Decision = "cancel"
)

// HasConflict reports whether candidate overlaps any same-day event in
// existing. Zero-duration candidates and events describe empty intervals and
// never conflict. O(n) in the number of same-day events.
func HasConflict(candidate Event, existing []Event) bool {
	return len(FindConflicts(candidate, existing)) > 0
}

// FindConflicts returns every same-day event whose half-open interval
// overlaps the candidate's, in input order. Used by the conflict dialog to
// show the clashing appointments.
func FindConflicts(candidate Event, existing []Event) []Event {
	cStart, cEnd := candidate.Start(), candidate.End()
	if !cEnd.After(cStart) {
		return nil
	}

	var conflicts []Event
	for _, e := range existing {
		if !SameDay(e.Date, cStart) {
			continue
		}
		eStart, eEnd := e.Start(), e.End()
		if !eEnd.After(eStart) {
			continue
		}
		if cStart.Before(eEnd) && cEnd.After(eStart) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}
