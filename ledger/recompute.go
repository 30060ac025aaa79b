/*
recompute.go - Balance derivation and payment add/remove

PURPOSE:
  The heart of the billing engine: given a transaction and the complete,
  current set of installments referencing it, derive paid, remaining, and
  status. Adding or removing a payment is expressed as "mutate the set, then
  recompute", never as applying a delta to the stored totals.

WHY FULL-SNAPSHOT RECOMPUTATION:
  A prior write may have half-failed (installment saved, transaction update
  lost). Deriving from the full set self-heals that drift on the next
  recompute; applying deltas would compound it.

KEY RULES:
  - Installment-type sales: paid = sum of installment amounts, replacing any
    previously stored value
  - Full-type sales: paid is fixed at creation and never re-derived
  - remaining = max(totalAmount - paid, 0); never negative, even overpaid
  - status follows ClassifyStatus

SEE ALSO:
  - types.go: Entities and status classification
  - clinic/billing.go: The persistence saga around these computations
*/
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNonPositiveAmount is returned when a payment amount is zero or
	// negative. Rejected before any store call.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")

	// ErrInstallmentNotFound is returned when removing a payment that is
	// not in the provided set.
	ErrInstallmentNotFound = errors.New("installment not found")

	// ErrUnknownPaymentType is returned when a sale is created with a
	// payment type other than full or installment.
	ErrUnknownPaymentType = errors.New("unknown payment type")
)

// =============================================================================
// RECOMPUTATION
// =============================================================================

// SumAmounts totals the amounts of the given installments.
func SumAmounts(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, in := range installments {
		total = total.Add(in.Amount)
	}
	return total
}

// Recompute derives tx's paid, remaining, and status from the complete
// current installment set and returns the updated transaction. Idempotent:
// recomputing twice with the same set yields identical output. The caller
// persists the result; no I/O happens here.
func Recompute(tx Transaction, installments []Installment) Transaction {
	if tx.PaymentType == PayInstallment {
		tx.Paid = SumAmounts(installments)
	}
	tx.Remaining = decimal.Max(tx.TotalAmount.Sub(tx.Paid), decimal.Zero)
	tx.Status = ClassifyStatus(tx.Remaining, tx.PaymentType)
	tx.NeedsRecompute = false
	return tx
}

// AddPayment computes the records for a new installment payment: the
// installment itself, with Remaining set to the post-payment balance, and
// the recomputed transaction. The caller persists both; see clinic.Billing
// for the two-step write and its compensation.
func AddPayment(tx Transaction, existing []Installment, amount decimal.Decimal, date time.Time, note string) (Installment, Transaction, error) {
	if !amount.IsPositive() {
		return Installment{}, tx, fmt.Errorf("add payment to %s: %w", tx.ID, ErrNonPositiveAmount)
	}

	in := Installment{
		TransactionID: tx.ID,
		Amount:        amount,
		DateTransact:  date,
		Note:          note,
		PatientID:     tx.PatientID,
		PatientName:   tx.PatientName,
		ServiceName:   tx.ServiceName,
	}

	updated := Recompute(tx, append(append([]Installment{}, existing...), in))
	in.Remaining = updated.Remaining
	return in, updated, nil
}

// RemovePayment drops the named installment from the set and recomputes.
// Remaining may re-increase and status may revert from paid to
// ongoing/unpaid. Returns the updated transaction and the surviving set.
func RemovePayment(tx Transaction, installmentID string, installments []Installment) (Transaction, []Installment, error) {
	remaining := make([]Installment, 0, len(installments))
	found := false
	for _, in := range installments {
		if in.ID == installmentID {
			found = true
			continue
		}
		remaining = append(remaining, in)
	}
	if !found {
		return tx, installments, fmt.Errorf("remove payment %s: %w", installmentID, ErrInstallmentNotFound)
	}
	return Recompute(tx, remaining), remaining, nil
}

// =============================================================================
// SALE CREATION
// =============================================================================

// NewSale builds the records for a sale at its creation time. Full sales are
// paid in full immediately. Installment sales start with initialPay (which
// may be zero); a positive initial payment also yields the initial
// installment record so the plan's history is complete from day one.
func NewSale(patientID, patientName, serviceID, serviceName string, totalAmount decimal.Decimal, paymentType PaymentType, initialPay decimal.Decimal, at time.Time) (Transaction, *Installment, error) {
	if totalAmount.IsNegative() {
		return Transaction{}, nil, ErrNonPositiveAmount
	}

	var paid decimal.Decimal
	switch paymentType {
	case PayFull:
		paid = totalAmount
	case PayInstallment:
		if initialPay.IsNegative() {
			return Transaction{}, nil, ErrNonPositiveAmount
		}
		paid = initialPay
	default:
		return Transaction{}, nil, fmt.Errorf("%w: %q", ErrUnknownPaymentType, paymentType)
	}

	remaining := decimal.Max(totalAmount.Sub(paid), decimal.Zero)
	tx := Transaction{
		PatientID:   patientID,
		PatientName: patientName,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		TotalAmount: totalAmount,
		PaymentType: paymentType,
		Paid:        paid,
		Remaining:   remaining,
		Status:      ClassifyStatus(remaining, paymentType),
		CreatedAt:   at,
	}

	var initial *Installment
	if paymentType == PayInstallment && initialPay.IsPositive() {
		initial = &Installment{
			Amount:       initialPay,
			DateTransact: at,
			Remaining:    remaining,
			Note:         "Initial payment",
			PatientID:    patientID,
			PatientName:  patientName,
			ServiceName:  serviceName,
		}
	}
	return tx, initial, nil
}
