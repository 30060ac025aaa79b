package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senoto/clinic-engine/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func installmentTx(id, total string) ledger.Transaction {
	return ledger.Transaction{
		ID:          id,
		PatientID:   "pat-1",
		PatientName: "Maria Cruz",
		ServiceName: "Braces",
		TotalAmount: dec(total),
		PaymentType: ledger.PayInstallment,
		CreatedAt:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func payment(id, txID, amount string, day int) ledger.Installment {
	return ledger.Installment{
		ID:            id,
		TransactionID: txID,
		Amount:        dec(amount),
		DateTransact:  time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// RECOMPUTE
// =============================================================================

func TestRecompute_DerivesPaidFromInstallments(t *testing.T) {
	// GIVEN: A 5000 installment sale with payments of 2000 and 1500
	// WHEN: Recompute runs
	// THEN: paid=3500, remaining=1500, status=ongoing

	tx := installmentTx("tx-1", "5000")
	tx.Paid = dec("999") // stale stored value, must be replaced

	got := ledger.Recompute(tx, []ledger.Installment{
		payment("in-1", "tx-1", "2000", 2),
		payment("in-2", "tx-1", "1500", 5),
	})

	assert.True(t, got.Paid.Equal(dec("3500")))
	assert.True(t, got.Remaining.Equal(dec("1500")))
	assert.Equal(t, ledger.StatusOngoing, got.Status)
}

func TestRecompute_Idempotent(t *testing.T) {
	tx := installmentTx("tx-1", "5000")
	set := []ledger.Installment{payment("in-1", "tx-1", "2000", 2)}

	once := ledger.Recompute(tx, set)
	twice := ledger.Recompute(once, set)
	assert.Equal(t, once, twice)
}

func TestRecompute_Overpayment_RemainingClampedToZero(t *testing.T) {
	// GIVEN: Payments exceeding the total
	// WHEN: Recompute runs
	// THEN: remaining is 0, not negative, and the sale is paid

	tx := installmentTx("tx-1", "5000")
	got := ledger.Recompute(tx, []ledger.Installment{
		payment("in-1", "tx-1", "3000", 2),
		payment("in-2", "tx-1", "2500", 5),
	})

	assert.True(t, got.Remaining.IsZero())
	assert.Equal(t, ledger.StatusPaid, got.Status)
	assert.True(t, got.Paid.Equal(dec("5500")))
}

func TestRecompute_EmptySet_FullRemaining(t *testing.T) {
	tx := installmentTx("tx-1", "5000")
	got := ledger.Recompute(tx, nil)

	assert.True(t, got.Paid.IsZero())
	assert.True(t, got.Remaining.Equal(dec("5000")))
	assert.Equal(t, ledger.StatusOngoing, got.Status)
}

func TestRecompute_FullSale_PaidNotRederived(t *testing.T) {
	// GIVEN: A full-payment sale
	// WHEN: Recompute runs with an unrelated installment set
	// THEN: paid stays at the creation-time value

	tx := ledger.Transaction{
		ID:          "tx-1",
		TotalAmount: dec("1200"),
		PaymentType: ledger.PayFull,
		Paid:        dec("1200"),
	}
	got := ledger.Recompute(tx, []ledger.Installment{payment("in-1", "tx-1", "50", 2)})

	assert.True(t, got.Paid.Equal(dec("1200")))
	assert.True(t, got.Remaining.IsZero())
	assert.Equal(t, ledger.StatusPaid, got.Status)
}

func TestRecompute_ClearsNeedsRecompute(t *testing.T) {
	tx := installmentTx("tx-1", "5000")
	tx.NeedsRecompute = true

	got := ledger.Recompute(tx, nil)
	assert.False(t, got.NeedsRecompute)
}

// =============================================================================
// ADD / REMOVE PAYMENT
// =============================================================================

func TestAddPayment_RecordsPostPaymentRemaining(t *testing.T) {
	// GIVEN: A 5000 sale with 2000 already paid
	// WHEN: A 3000 payment is added
	// THEN: The installment shows remaining 0 and the sale flips to paid

	tx := installmentTx("tx-1", "5000")
	existing := []ledger.Installment{payment("in-1", "tx-1", "2000", 2)}

	in, updated, err := ledger.AddPayment(tx, existing, dec("3000"),
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), "final")
	require.NoError(t, err)

	assert.True(t, in.Remaining.IsZero())
	assert.True(t, updated.Paid.Equal(dec("5000")))
	assert.Equal(t, ledger.StatusPaid, updated.Status)
	assert.Equal(t, "tx-1", in.TransactionID)
	assert.Equal(t, "Maria Cruz", in.PatientName)
}

func TestAddPayment_NonPositiveAmount_Rejected(t *testing.T) {
	tx := installmentTx("tx-1", "5000")

	_, _, err := ledger.AddPayment(tx, nil, decimal.Zero, time.Now(), "")
	assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)

	_, _, err = ledger.AddPayment(tx, nil, dec("-10"), time.Now(), "")
	assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestRemovePayment_BalanceReincreases(t *testing.T) {
	// GIVEN: A 5000 sale fully covered by 2000 + 3000
	// WHEN: The 3000 payment is removed
	// THEN: remaining returns to 3000 and status reverts to ongoing

	tx := installmentTx("tx-1", "5000")
	set := []ledger.Installment{
		payment("in-1", "tx-1", "2000", 2),
		payment("in-2", "tx-1", "3000", 10),
	}
	tx = ledger.Recompute(tx, set)
	require.Equal(t, ledger.StatusPaid, tx.Status)

	updated, survivors, err := ledger.RemovePayment(tx, "in-2", set)
	require.NoError(t, err)

	assert.True(t, updated.Remaining.Equal(dec("3000")))
	assert.Equal(t, ledger.StatusOngoing, updated.Status)
	assert.Len(t, survivors, 1)
	assert.Equal(t, "in-1", survivors[0].ID)
}

func TestRemovePayment_UnknownID(t *testing.T) {
	tx := installmentTx("tx-1", "5000")
	set := []ledger.Installment{payment("in-1", "tx-1", "2000", 2)}

	_, _, err := ledger.RemovePayment(tx, "in-404", set)
	assert.ErrorIs(t, err, ledger.ErrInstallmentNotFound)
}

// =============================================================================
// SALE CREATION
// =============================================================================

func TestNewSale_Full(t *testing.T) {
	tx, initial, err := ledger.NewSale("pat-1", "Maria Cruz", "svc-1", "Cleaning",
		dec("1200"), ledger.PayFull, decimal.Zero, time.Now())
	require.NoError(t, err)

	assert.Nil(t, initial)
	assert.True(t, tx.Paid.Equal(dec("1200")))
	assert.True(t, tx.Remaining.IsZero())
	assert.Equal(t, ledger.StatusPaid, tx.Status)
}

func TestNewSale_InstallmentWithInitialPayment(t *testing.T) {
	// GIVEN: A 5000 installment sale with 2000 down
	// WHEN: The sale is created
	// THEN: An initial installment record exists with the standard note

	tx, initial, err := ledger.NewSale("pat-1", "Maria Cruz", "svc-1", "Braces",
		dec("5000"), ledger.PayInstallment, dec("2000"), time.Now())
	require.NoError(t, err)
	require.NotNil(t, initial)

	assert.True(t, tx.Paid.Equal(dec("2000")))
	assert.True(t, tx.Remaining.Equal(dec("3000")))
	assert.Equal(t, ledger.StatusOngoing, tx.Status)
	assert.Equal(t, "Initial payment", initial.Note)
	assert.True(t, initial.Amount.Equal(dec("2000")))
	assert.True(t, initial.Remaining.Equal(dec("3000")))
}

func TestNewSale_InstallmentZeroDown(t *testing.T) {
	tx, initial, err := ledger.NewSale("pat-1", "Maria Cruz", "svc-1", "Braces",
		dec("5000"), ledger.PayInstallment, decimal.Zero, time.Now())
	require.NoError(t, err)

	assert.Nil(t, initial)
	assert.Equal(t, ledger.StatusOngoing, tx.Status)
	assert.True(t, tx.Remaining.Equal(dec("5000")))
}

func TestNewSale_NegativeTotalRejected(t *testing.T) {
	for _, pt := range []ledger.PaymentType{ledger.PayFull, ledger.PayInstallment} {
		_, _, err := ledger.NewSale("pat-1", "Maria Cruz", "svc-1", "Braces",
			dec("-5000"), pt, decimal.Zero, time.Now())
		assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
	}
}

func TestNewSale_UnknownPaymentType(t *testing.T) {
	_, _, err := ledger.NewSale("pat-1", "Maria Cruz", "svc-1", "Braces",
		dec("5000"), ledger.PaymentType("credit"), decimal.Zero, time.Now())
	assert.ErrorIs(t, err, ledger.ErrUnknownPaymentType)
}

// =============================================================================
// AMOUNT PARSING
// =============================================================================

func TestParseAmount_CoercesLooseTypes(t *testing.T) {
	assert.True(t, ledger.ParseAmount("150.50").Equal(dec("150.50")))
	assert.True(t, ledger.ParseAmount(float64(99.5)).Equal(dec("99.5")))
	assert.True(t, ledger.ParseAmount(int(25)).Equal(dec("25")))
	assert.True(t, ledger.ParseAmount(nil).IsZero())
	assert.True(t, ledger.ParseAmount("garbage").IsZero())
}
