/*
report.go - Portfolio summaries and report row building

PURPOSE:
  Builds the data behind the reports screen and its export: the payment
  ledger (one row per cash movement), the sales view (one row per original
  sale), the cash-flow totals, and the expense summary.

DOUBLE-COUNTING RULE:
  The payment ledger deliberately does NOT include an installment plan's
  original totalAmount as a row; only its constituent payments appear.
  Cash collected and total sale value are two distinct metrics reported
  side by side (TotalCashCollected vs TotalSales).

ORPHANS:
  An installment whose parent transaction was deleted still produces a
  ledger row, keyed by its own transactionId. Transaction deletion does not
  cascade, so orphans are a normal, tolerated state.
*/
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PORTFOLIO SUMMARY
// =============================================================================

// Summary is the portfolio-level roll-up shown on the payments panel.
type Summary struct {
	TotalPaid        decimal.Decimal
	TotalRemaining   decimal.Decimal
	CountWithBalance int
}

// Summarize totals paid and remaining across transactions and counts those
// with an open balance. A zero-length input yields a zero summary.
func Summarize(transactions []Transaction) Summary {
	s := Summary{TotalPaid: decimal.Zero, TotalRemaining: decimal.Zero}
	for _, t := range transactions {
		s.TotalPaid = s.TotalPaid.Add(t.Paid)
		s.TotalRemaining = s.TotalRemaining.Add(t.Remaining)
		if t.Remaining.IsPositive() {
			s.CountWithBalance++
		}
	}
	return s
}

// =============================================================================
// PAYMENT LEDGER - one row per cash movement
// =============================================================================

// RowType tags the origin of a ledger row.
type RowType string

const (
	RowFull        RowType = "full"
	RowInstallment RowType = "installment"
)

// LedgerRow is one cash-movement entry: either a full sale paid at once or
// a single installment payment.
type LedgerRow struct {
	ID            string
	TransactionID string
	Type          RowType
	PatientName   string
	Amount        decimal.Decimal
	Remaining     decimal.Decimal
	Date          time.Time
}

// BuildPaymentLedger merges full-sale rows and installment rows, sorted
// descending by date. Installment plans contribute only their payments,
// never their original totalAmount. Orphaned installments are kept.
func BuildPaymentLedger(transactions []Transaction, installments []Installment) []LedgerRow {
	rows := make([]LedgerRow, 0, len(transactions)+len(installments))

	for _, t := range transactions {
		if t.PaymentType == PayInstallment {
			continue
		}
		rows = append(rows, LedgerRow{
			ID:            t.ID,
			TransactionID: t.ID,
			Type:          RowFull,
			PatientName:   t.PatientName,
			Amount:        t.TotalAmount,
			Remaining:     decimal.Zero,
			Date:          t.CreatedAt,
		})
	}

	for _, in := range installments {
		rows = append(rows, LedgerRow{
			ID:            in.ID,
			TransactionID: in.TransactionID,
			Type:          RowInstallment,
			PatientName:   in.PatientName,
			Amount:        in.Amount,
			Remaining:     in.Remaining,
			Date:          in.DateTransact,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows
}

// CashTotals are the headline figures above the ledger table. TotalSales
// (value of services sold) and TotalCashCollected (money actually received)
// are deliberately different numbers.
type CashTotals struct {
	TotalSales            decimal.Decimal
	TotalCashCollected    decimal.Decimal
	InstallmentsCollected decimal.Decimal
	FullPaymentsReceived  decimal.Decimal
	TotalExpenses         decimal.Decimal
	NetRevenue            decimal.Decimal
}

// ComputeCashTotals derives the headline figures from the ledger rows, the
// full transaction set, and the expense list. NetRevenue = cash collected
// minus expenses.
func ComputeCashTotals(transactions []Transaction, rows []LedgerRow, expenses []Expense) CashTotals {
	ct := CashTotals{
		TotalSales:            decimal.Zero,
		TotalCashCollected:    decimal.Zero,
		InstallmentsCollected: decimal.Zero,
		TotalExpenses:         decimal.Zero,
	}
	for _, t := range transactions {
		ct.TotalSales = ct.TotalSales.Add(t.TotalAmount)
	}
	for _, r := range rows {
		ct.TotalCashCollected = ct.TotalCashCollected.Add(r.Amount)
		if r.Type == RowInstallment {
			ct.InstallmentsCollected = ct.InstallmentsCollected.Add(r.Amount)
		}
	}
	ct.FullPaymentsReceived = ct.TotalCashCollected.Sub(ct.InstallmentsCollected)
	for _, e := range expenses {
		ct.TotalExpenses = ct.TotalExpenses.Add(e.Amount)
	}
	ct.NetRevenue = ct.TotalCashCollected.Sub(ct.TotalExpenses)
	return ct
}

// =============================================================================
// SALES VIEW - one row per original sale
// =============================================================================

// SaleRow is one original sale with its cumulative collection state.
type SaleRow struct {
	TransactionID string
	PatientID     string
	PatientName   string
	ServiceName   string
	PaymentType   PaymentType
	Amount        decimal.Decimal
	TotalPaid     decimal.Decimal
	Remaining     decimal.Decimal
	Date          time.Time
}

// SalesReport produces one row per transaction within [from, to] on the
// original sale date, newest first. Zero from/to bounds are open-ended.
// Full sales show TotalPaid = Amount and zero remaining.
func SalesReport(transactions []Transaction, from, to time.Time) []SaleRow {
	rows := make([]SaleRow, 0, len(transactions))
	for _, t := range transactions {
		if !inRange(t.CreatedAt, from, to) {
			continue
		}
		row := SaleRow{
			TransactionID: t.ID,
			PatientID:     t.PatientID,
			PatientName:   t.PatientName,
			ServiceName:   t.ServiceName,
			PaymentType:   t.PaymentType,
			Amount:        t.TotalAmount,
			TotalPaid:     t.Paid,
			Remaining:     t.Remaining,
			Date:          t.CreatedAt,
		}
		if t.PaymentType == PayFull {
			row.TotalPaid = t.TotalAmount
			row.Remaining = decimal.Zero
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows
}

// FilterRowsByDate keeps ledger rows whose payment date falls in [from, to].
// Zero bounds are open-ended.
func FilterRowsByDate(rows []LedgerRow, from, to time.Time) []LedgerRow {
	kept := make([]LedgerRow, 0, len(rows))
	for _, r := range rows {
		if inRange(r.Date, from, to) {
			kept = append(kept, r)
		}
	}
	return kept
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// =============================================================================
// EXPENSE SUMMARY
// =============================================================================

// ExpenseTotals is the expense tab's summary block.
type ExpenseTotals struct {
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// SummarizeExpenses totals expenses overall and per category. Entries with
// no category land in "Uncategorized".
func SummarizeExpenses(expenses []Expense) ExpenseTotals {
	totals := ExpenseTotals{
		Total:      decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
	}
	for _, e := range expenses {
		totals.Total = totals.Total.Add(e.Amount)
		cat := e.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		prev, ok := totals.ByCategory[cat]
		if !ok {
			prev = decimal.Zero
		}
		totals.ByCategory[cat] = prev.Add(e.Amount)
	}
	return totals
}
