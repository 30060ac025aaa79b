/*
errors.go - Error types for the clinic layer

PURPOSE:
  All clinic-level error types in one place. Engine errors (ledger,
  schedule) and store errors (docstore) pass through wrapped, so callers
  can still test them with errors.Is.

ERROR CATEGORIES:
  1. Validation errors - bad input from the caller
  2. Conflict errors - scheduling conflicts surfaced as errors
  3. Saga errors - partial failures of the two-step payment write

SEE ALSO:
  - billing.go: Uses SagaError
  - scheduleboard.go: Uses ConflictError
*/
package clinic

import (
	"errors"
	"fmt"
	"time"

	"github.com/senoto/clinic-engine/ledger"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrScheduleConflict is returned when a new appointment overlaps an
	// existing one on the same day and the caller did not force it.
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrNonPositiveDuration is returned when an appointment's duration is
	// zero or negative.
	ErrNonPositiveDuration = errors.New("duration must be positive")

	// ErrPartialWrite is returned when the second step of a two-step write
	// failed after the first step was committed. The affected transaction is
	// flagged for recompute; Reconcile repairs it.
	ErrPartialWrite = errors.New("partial write, transaction flagged for recompute")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// MissingFieldError names the field a validation rejected.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// ConflictError carries the overlapping appointments found for a candidate.
type ConflictError struct {
	Date      time.Time
	Conflicts []string // conflicting appointment titles
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict on %s with %d existing appointment(s)",
		e.Date.Format("2006-01-02"), len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// SagaError records which transaction was left flagged after a partial
// payment write, and the store error that caused it.
type SagaError struct {
	TransactionID string
	Step          string // "update-transaction", "flag-recompute"
	Cause         error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("payment write incomplete at %s for transaction %s: %v",
		e.Step, e.TransactionID, e.Cause)
}

func (e *SagaError) Unwrap() error {
	return ErrPartialWrite
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input
// rather than a server-side failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrNonPositiveDuration) ||
		errors.Is(err, ledger.ErrNonPositiveAmount) ||
		errors.Is(err, ledger.ErrUnknownPaymentType) ||
		errors.Is(err, ledger.ErrInstallmentNotFound)
}
