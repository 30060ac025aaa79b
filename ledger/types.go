/*
Package ledger provides the billing aggregation engine.

PURPOSE:
  Pure computations over the clinic's billing records: deriving a
  transaction's paid/remaining/status from its installment payments,
  portfolio summaries, and the row sets behind the reports screen. The
  package performs no storage I/O; callers fetch snapshots, compute, and
  persist the results themselves.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: A billable service sale with an original price and a
    cumulative paid amount
  - Installment: One discrete payment applied against a transaction
  - Expense: A standalone cost entry used for net-revenue reporting
  - ParseAmount: Defensive numeric coercion (garbage in, zero out)

DESIGN PRINCIPLES:
  1. Precision: amounts are decimal.Decimal, never float64
  2. Derivability: paid/remaining/status are always re-derivable from the
     full installment set; stored values are a cache, not the truth
  3. Tolerance: malformed amounts contribute zero to sums instead of
     panicking; orphaned installments still appear in reports

SEE ALSO:
  - recompute.go: Balance derivation and payment add/remove
  - report.go: Portfolio summaries and report row building
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT TYPE AND STATUS
// =============================================================================

// PaymentType distinguishes one-shot sales from installment plans.
type PaymentType string

const (
	PayFull        PaymentType = "full"
	PayInstallment PaymentType = "installment"
)

// Status classifies a transaction's settlement state.
type Status string

const (
	// StatusPaid: nothing remaining.
	StatusPaid Status = "paid"

	// StatusOngoing: an installment plan with a balance still open.
	StatusOngoing Status = "ongoing"

	// StatusUnpaid: a non-installment sale with a balance still open.
	StatusUnpaid Status = "unpaid"
)

// ClassifyStatus derives the status from what remains and how the sale is
// being paid. remaining <= 0 is always "paid", even when overpaid.
func ClassifyStatus(remaining decimal.Decimal, paymentType PaymentType) Status {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	if paymentType == PayInstallment {
		return StatusOngoing
	}
	return StatusUnpaid
}

// =============================================================================
// ENTITIES
// =============================================================================

// Transaction is a billable service sale. Paid and Remaining are derived
// fields maintained by Recompute; Status is derived from them.
type Transaction struct {
	ID          string
	PatientID   string
	PatientName string
	ServiceID   string
	ServiceName string
	TotalAmount decimal.Decimal
	PaymentType PaymentType
	Paid        decimal.Decimal
	Remaining   decimal.Decimal
	Status      Status
	CreatedAt   time.Time

	// NeedsRecompute marks a transaction whose two-step write was
	// interrupted; the reconciliation sweep re-derives it.
	NeedsRecompute bool
}

// Installment is a single payment against a transaction. Remaining records
// the transaction's balance immediately after this payment was applied.
// The patient and service fields are denormalized for report rows.
type Installment struct {
	ID            string
	TransactionID string
	Amount        decimal.Decimal
	DateTransact  time.Time
	Remaining     decimal.Decimal
	Note          string
	PatientID     string
	PatientName   string
	ServiceName   string
}

// Expense is an independent cost entry. No reconciliation invariant; it only
// feeds the expense report and net revenue.
type Expense struct {
	ID        string
	Title     string
	Category  string
	Amount    decimal.Decimal
	DateSpent time.Time
}

// =============================================================================
// AMOUNT COERCION
// =============================================================================

// ParseAmount converts a loosely-typed amount into a decimal. Missing,
// empty, or unparsable values become zero so sums degrade gracefully instead
// of failing.
func ParseAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case string:
		if x == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	default:
		return decimal.Zero
	}
}
