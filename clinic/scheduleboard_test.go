package clinic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/docstore/memory"
	"github.com/senoto/clinic-engine/logger"
	"github.com/senoto/clinic-engine/schedule"
)

func newBoard(t *testing.T) *clinic.ScheduleBoard {
	t.Helper()
	board, err := clinic.NewScheduleBoard(context.Background(), memory.New(),
		logger.NewWithWriter(testWriter{t}))
	require.NoError(t, err)
	t.Cleanup(board.Close)
	return board
}

func appointment(title string, date time.Time, duration int) schedule.Event {
	return schedule.Event{Title: title, Date: date, Duration: duration}
}

var tuesday = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

func tat(hour, min int) time.Time {
	return time.Date(tuesday.Year(), tuesday.Month(), tuesday.Day(), hour, min, 0, 0, time.UTC)
}

func TestScheduleBoard_AddAndView(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	saved, err := board.Add(ctx, appointment("Cleaning", tat(9, 0), 30), "")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	events := board.Events(tuesday, schedule.ViewDay)
	require.Len(t, events, 1)
	assert.Equal(t, "Cleaning", events[0].Title)

	counts := board.DayCounts(tuesday)
	assert.Equal(t, 1, counts[tuesday])
}

func TestScheduleBoard_ConflictBlocksWithoutDecision(t *testing.T) {
	// GIVEN: An existing 09:00-10:00 appointment
	// WHEN: An overlapping one is added with no decision
	// THEN: A ConflictError names the clash and nothing is saved

	board := newBoard(t)
	ctx := context.Background()

	_, err := board.Add(ctx, appointment("Root canal", tat(9, 0), 60), "")
	require.NoError(t, err)

	_, err = board.Add(ctx, appointment("Checkup", tat(9, 30), 30), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, clinic.ErrScheduleConflict)

	var conflict *clinic.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"Root canal"}, conflict.Conflicts)

	assert.Len(t, board.Events(tuesday, schedule.ViewDay), 1)
}

func TestScheduleBoard_ProceedOverridesConflict(t *testing.T) {
	// GIVEN: A detected conflict
	// WHEN: The caller resubmits with DecisionProceed
	// THEN: The appointment is saved like any other

	board := newBoard(t)
	ctx := context.Background()

	_, err := board.Add(ctx, appointment("Root canal", tat(9, 0), 60), "")
	require.NoError(t, err)

	saved, err := board.Add(ctx, appointment("Checkup", tat(9, 30), 30), schedule.DecisionProceed)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	assert.Len(t, board.Events(tuesday, schedule.ViewDay), 2)
}

func TestScheduleBoard_AddDoesNotDuplicateSnapshot(t *testing.T) {
	// GIVEN: A board whose store notifies synchronously on create
	// WHEN: Appointments are saved through the board itself
	// THEN: Each appears exactly once; the refresh already loaded it

	board := newBoard(t)
	ctx := context.Background()

	_, err := board.Add(ctx, appointment("Morning", tat(9, 0), 30), "")
	require.NoError(t, err)
	_, err = board.Add(ctx, appointment("Afternoon", tat(14, 0), 30), "")
	require.NoError(t, err)

	events := board.Events(tuesday, schedule.ViewDay)
	require.Len(t, events, 2)

	seen := map[string]bool{}
	for _, e := range events {
		assert.False(t, seen[e.ID], "id %s listed twice", e.ID)
		seen[e.ID] = true
	}
	assert.Equal(t, 2, board.DayCounts(tuesday)[tuesday])
}

func TestScheduleBoard_BackToBackAllowed(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	_, err := board.Add(ctx, appointment("First", tat(9, 0), 30), "")
	require.NoError(t, err)

	_, err = board.Add(ctx, appointment("Second", tat(9, 30), 30), "")
	assert.NoError(t, err, "touching intervals do not conflict")
}

func TestScheduleBoard_Validation(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	_, err := board.Add(ctx, appointment("", tat(9, 0), 30), "")
	assert.ErrorIs(t, err, clinic.ErrMissingField)

	_, err = board.Add(ctx, schedule.Event{Title: "No date", Duration: 30}, "")
	assert.ErrorIs(t, err, clinic.ErrMissingField)

	_, err = board.Add(ctx, appointment("Instant", tat(9, 0), 0), "")
	assert.ErrorIs(t, err, clinic.ErrNonPositiveDuration)

	_, err = board.Add(ctx, appointment("Backwards", tat(9, 0), -15), "")
	assert.ErrorIs(t, err, clinic.ErrNonPositiveDuration)

	assert.Empty(t, board.Events(tuesday, schedule.ViewDay), "rejected input is never persisted")
}

func TestScheduleBoard_Delete(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	saved, err := board.Add(ctx, appointment("Cleaning", tat(9, 0), 30), "")
	require.NoError(t, err)

	require.NoError(t, board.Delete(ctx, saved.ID))
	assert.Empty(t, board.Events(tuesday, schedule.ViewDay))

	// Freed slot no longer conflicts.
	_, err = board.Add(ctx, appointment("Replacement", tat(9, 0), 30), "")
	assert.NoError(t, err)
}

func TestScheduleBoard_RefreshPicksUpExternalWrites(t *testing.T) {
	// GIVEN: A board over a store that another session writes to
	// WHEN: The change subscription fires
	// THEN: The board's snapshot includes the new appointment

	store := memory.New()
	board, err := clinic.NewScheduleBoard(context.Background(), store,
		logger.NewWithWriter(testWriter{t}))
	require.NoError(t, err)
	t.Cleanup(board.Close)

	_, err = store.Create(context.Background(), "schedules", map[string]any{
		"title":    "Walk-in",
		"date":     tat(11, 0).Format(time.RFC3339),
		"duration": 30,
	})
	require.NoError(t, err)

	// The memory store notifies synchronously, so the snapshot is current.
	events := board.Events(tuesday, schedule.ViewDay)
	require.Len(t, events, 1)
	assert.Equal(t, "Walk-in", events[0].Title)
}
