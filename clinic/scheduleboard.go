/*
scheduleboard.go - Appointment state container

PURPOSE:
  Holds a snapshot of the schedules collection, keeps it current through a
  store subscription, and runs the conflict check on every add. The add flow
  is two-phase: a first call with no decision reports conflicts; the caller
  confirms with DecisionProceed to save anyway.

CONCURRENCY:
  The cached snapshot is guarded by an RWMutex. Store change callbacks and
  reads may arrive from different goroutines.

SEE ALSO:
  - schedule/conflict.go: Overlap detection
  - schedule/calendar.go: View filtering and the month grid
*/
package clinic

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/schedule"
)

// ScheduleBoard is the appointment container. Construct with
// NewScheduleBoard and call Close when done.
type ScheduleBoard struct {
	store docstore.Store
	log   zerolog.Logger

	mu     sync.RWMutex
	events []schedule.Event

	unsubscribe func()
}

// NewScheduleBoard loads the current schedule snapshot and subscribes to
// changes. The subscription refetches the full collection on every change.
func NewScheduleBoard(ctx context.Context, store docstore.Store, log zerolog.Logger) (*ScheduleBoard, error) {
	b := &ScheduleBoard{
		store: store,
		log:   log.With().Str("component", "scheduleboard").Logger(),
	}
	if err := b.Refresh(ctx); err != nil {
		return nil, err
	}
	b.unsubscribe = store.Subscribe(ColSchedules, func() {
		if err := b.Refresh(context.Background()); err != nil {
			b.log.Error().Err(err).Msg("refresh after change failed")
		}
	})
	return b, nil
}

// Close drops the change subscription.
func (b *ScheduleBoard) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// Refresh refetches the full schedules collection.
func (b *ScheduleBoard) Refresh(ctx context.Context) error {
	docs, err := b.store.List(ctx, ColSchedules,
		docstore.ListOptions{}.WithOrder("date", false))
	if err != nil {
		return err
	}
	events := make([]schedule.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, decodeEvent(doc))
	}

	b.mu.Lock()
	b.events = events
	b.mu.Unlock()
	return nil
}

// Events returns the snapshot narrowed to the given view around ref.
func (b *ScheduleBoard) Events(ref time.Time, mode schedule.ViewMode) []schedule.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return schedule.FilterByView(b.events, ref, mode)
}

// DayCounts returns per-day appointment counts over the 42-cell month grid
// containing ref.
func (b *ScheduleBoard) DayCounts(ref time.Time) map[time.Time]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return schedule.CountByDay(b.events, ref)
}

// Conflicts returns the existing appointments the candidate would overlap.
// An empty result means the candidate is safe to save.
func (b *ScheduleBoard) Conflicts(candidate schedule.Event) []schedule.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return schedule.FindConflicts(candidate, b.events)
}

// Add validates and saves an appointment. When the candidate conflicts and
// decision is not DecisionProceed, nothing is persisted and a ConflictError
// listing the clashes is returned. DecisionProceed saves the event exactly
// as a non-conflicting one would be.
func (b *ScheduleBoard) Add(ctx context.Context, candidate schedule.Event, decision schedule.Decision) (schedule.Event, error) {
	if candidate.Title == "" {
		return schedule.Event{}, &MissingFieldError{Field: "title"}
	}
	if candidate.Date.IsZero() {
		return schedule.Event{}, &MissingFieldError{Field: "date"}
	}
	if candidate.Duration <= 0 {
		return schedule.Event{}, ErrNonPositiveDuration
	}

	if conflicts := b.Conflicts(candidate); len(conflicts) > 0 && decision != schedule.DecisionProceed {
		titles := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			titles = append(titles, c.Title)
		}
		return schedule.Event{}, &ConflictError{Date: candidate.Date, Conflicts: titles}
	}

	doc, err := b.store.Create(ctx, ColSchedules, encodeEvent(candidate))
	if err != nil {
		return schedule.Event{}, err
	}
	saved := decodeEvent(doc)
	b.log.Info().Str("id", saved.ID).Time("date", saved.Date).Msg("appointment saved")

	// The store's change notification already refreshed the snapshot with
	// the new document; appending here would double it.
	return saved, nil
}

// Update rewrites an appointment's fields. Conflict checking does not rerun
// here; edits from the calendar view are trusted.
func (b *ScheduleBoard) Update(ctx context.Context, event schedule.Event) (schedule.Event, error) {
	doc, err := b.store.Update(ctx, ColSchedules, event.ID, encodeEvent(event))
	if err != nil {
		return schedule.Event{}, err
	}
	return decodeEvent(doc), b.Refresh(ctx)
}

// Delete removes an appointment.
func (b *ScheduleBoard) Delete(ctx context.Context, id string) error {
	if err := b.store.Delete(ctx, ColSchedules, id); err != nil {
		return err
	}
	b.mu.Lock()
	for i, e := range b.events {
		if e.ID == id {
			b.events = append(b.events[:i], b.events[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	return nil
}
