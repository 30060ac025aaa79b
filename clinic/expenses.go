// expenses.go - operating expense records.
package clinic

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/ledger"
)

// Expenses manages operating expense records.
type Expenses struct {
	store docstore.Store
	log   zerolog.Logger
}

// NewExpenses builds the expense container.
func NewExpenses(store docstore.Store, log zerolog.Logger) *Expenses {
	return &Expenses{
		store: store,
		log:   log.With().Str("component", "expenses").Logger(),
	}
}

// List returns all expenses, newest first.
func (e *Expenses) List(ctx context.Context) ([]ledger.Expense, error) {
	docs, err := e.store.List(ctx, ColExpenses,
		docstore.ListOptions{}.WithOrder("dateSpent", true))
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Expense, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeExpense(doc))
	}
	return out, nil
}

// Create records an expense. A zero DateSpent defaults to now.
func (e *Expenses) Create(ctx context.Context, exp ledger.Expense) (ledger.Expense, error) {
	if strings.TrimSpace(exp.Title) == "" {
		return ledger.Expense{}, &MissingFieldError{Field: "title"}
	}
	if !exp.Amount.IsPositive() {
		return ledger.Expense{}, ledger.ErrNonPositiveAmount
	}
	if exp.DateSpent.IsZero() {
		exp.DateSpent = time.Now()
	}
	doc, err := e.store.Create(ctx, ColExpenses, encodeExpense(exp))
	if err != nil {
		return ledger.Expense{}, err
	}
	return decodeExpense(doc), nil
}

// Update rewrites an expense record.
func (e *Expenses) Update(ctx context.Context, exp ledger.Expense) (ledger.Expense, error) {
	doc, err := e.store.Update(ctx, ColExpenses, exp.ID, encodeExpense(exp))
	if err != nil {
		return ledger.Expense{}, err
	}
	return decodeExpense(doc), nil
}

// Delete removes an expense record.
func (e *Expenses) Delete(ctx context.Context, id string) error {
	return e.store.Delete(ctx, ColExpenses, id)
}

// Summarize buckets all expenses by category.
func (e *Expenses) Summarize(ctx context.Context) (ledger.ExpenseTotals, error) {
	all, err := e.List(ctx)
	if err != nil {
		return ledger.ExpenseTotals{}, err
	}
	return ledger.SummarizeExpenses(all), nil
}
