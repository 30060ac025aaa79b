/*
billing.go - Payment flows over the document store

PURPOSE:
  Orchestrates sale creation, installment payments, and removals against a
  store that offers no cross-document transactions. Every balance mutation
  runs the ledger engine on a freshly listed installment set and persists
  the recomputed snapshot.

TWO-STEP WRITE:
  AddPayment first creates the installment document, then updates its
  transaction with the recomputed totals. If the second step fails the
  installment already exists and the stored totals are stale. The
  compensation is a flag, not a rollback: the transaction is marked
  needsRecompute and Reconcile sweeps flagged (and silently drifted)
  transactions back to consistency by recomputing from the full set.

DELETE SEMANTICS:
  Deleting a transaction does NOT cascade to its installments. Orphaned
  installment rows stay in the collection; the read paths tolerate them.

SEE ALSO:
  - ledger/recompute.go: The pure computations
  - docstore/docstore.go: The consistency contract this works around
*/
package clinic

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/ledger"
)

// Billing drives all money flows. Stateless apart from its collaborators;
// every operation fetches what it needs.
type Billing struct {
	store docstore.Store
	log   zerolog.Logger
}

// NewBilling builds the billing container.
func NewBilling(store docstore.Store, log zerolog.Logger) *Billing {
	return &Billing{
		store: store,
		log:   log.With().Str("component", "billing").Logger(),
	}
}

// =============================================================================
// READS
// =============================================================================

// Transactions lists all transactions, newest first.
func (b *Billing) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	docs, err := b.store.List(ctx, ColTransactions,
		docstore.ListOptions{}.WithOrder("createdAt", true))
	if err != nil {
		return nil, err
	}
	return decodeTransactions(docs), nil
}

// TransactionsForPatient lists one patient's transactions, newest first.
func (b *Billing) TransactionsForPatient(ctx context.Context, patientID string) ([]ledger.Transaction, error) {
	docs, err := b.store.List(ctx, ColTransactions,
		docstore.Equal("patientId", patientID).WithOrder("createdAt", true))
	if err != nil {
		return nil, err
	}
	return decodeTransactions(docs), nil
}

// Installments lists the payments of one transaction, oldest first.
func (b *Billing) Installments(ctx context.Context, transactionID string) ([]ledger.Installment, error) {
	docs, err := b.store.List(ctx, ColInstallments,
		docstore.Equal("transactionId", transactionID).WithOrder("dateTransact", false))
	if err != nil {
		return nil, err
	}
	return decodeInstallments(docs), nil
}

// AllInstallments lists every installment across all transactions.
func (b *Billing) AllInstallments(ctx context.Context) ([]ledger.Installment, error) {
	docs, err := b.store.List(ctx, ColInstallments,
		docstore.ListOptions{}.WithOrder("dateTransact", false))
	if err != nil {
		return nil, err
	}
	return decodeInstallments(docs), nil
}

// Summary aggregates all transactions into portfolio totals.
func (b *Billing) Summary(ctx context.Context) (ledger.Summary, error) {
	txs, err := b.Transactions(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(txs), nil
}

// PatientSummary aggregates one patient's transactions.
func (b *Billing) PatientSummary(ctx context.Context, patientID string) (ledger.Summary, error) {
	txs, err := b.TransactionsForPatient(ctx, patientID)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(txs), nil
}

// PaymentLedger builds the chronological cash-receipt view: full sales as
// single rows, installment plans as their individual payments. Orphaned
// installments are included.
func (b *Billing) PaymentLedger(ctx context.Context) ([]ledger.LedgerRow, error) {
	txs, err := b.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	ins, err := b.AllInstallments(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.BuildPaymentLedger(txs, ins), nil
}

// =============================================================================
// SALE CREATION
// =============================================================================

// CreateSale persists a new sale. Installment sales with a positive initial
// payment also get their first installment record. The installment write
// happens after the transaction write; if it fails the transaction is
// flagged for recompute rather than deleted.
func (b *Billing) CreateSale(ctx context.Context, patientID, patientName, serviceID, serviceName string, totalAmount decimal.Decimal, paymentType ledger.PaymentType, initialPay decimal.Decimal) (ledger.Transaction, error) {
	if patientID == "" {
		return ledger.Transaction{}, &MissingFieldError{Field: "patientId"}
	}
	if serviceName == "" {
		return ledger.Transaction{}, &MissingFieldError{Field: "serviceName"}
	}

	tx, initial, err := ledger.NewSale(patientID, patientName, serviceID, serviceName,
		totalAmount, paymentType, initialPay, time.Now())
	if err != nil {
		return ledger.Transaction{}, err
	}

	doc, err := b.store.Create(ctx, ColTransactions, encodeTransaction(tx))
	if err != nil {
		return ledger.Transaction{}, err
	}
	saved := decodeTransaction(doc)
	b.log.Info().Str("id", saved.ID).Str("patient", saved.PatientName).
		Str("type", string(saved.PaymentType)).Msg("sale created")

	if initial != nil {
		initial.TransactionID = saved.ID
		if _, err := b.store.Create(ctx, ColInstallments, encodeInstallment(*initial)); err != nil {
			b.flagRecompute(ctx, saved.ID)
			return saved, &SagaError{TransactionID: saved.ID, Step: "create-installment", Cause: err}
		}
	}
	return saved, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// AddPayment records an installment payment against a transaction. Step one
// creates the installment document; step two updates the transaction with
// the recomputed totals. A step-two failure leaves the transaction flagged
// and returns a SagaError wrapping ErrPartialWrite.
func (b *Billing) AddPayment(ctx context.Context, transactionID string, amount decimal.Decimal, note string) (ledger.Installment, ledger.Transaction, error) {
	tx, err := b.getTransaction(ctx, transactionID)
	if err != nil {
		return ledger.Installment{}, ledger.Transaction{}, err
	}
	existing, err := b.Installments(ctx, transactionID)
	if err != nil {
		return ledger.Installment{}, ledger.Transaction{}, err
	}

	installment, updated, err := ledger.AddPayment(tx, existing, amount, time.Now(), note)
	if err != nil {
		return ledger.Installment{}, tx, err
	}

	// Step 1: persist the payment.
	doc, err := b.store.Create(ctx, ColInstallments, encodeInstallment(installment))
	if err != nil {
		return ledger.Installment{}, tx, err
	}
	installment.ID = doc.ID

	// Step 2: persist the recomputed totals. On failure, flag and bail.
	if _, err := b.store.Update(ctx, ColTransactions, tx.ID, transactionPatch(updated)); err != nil {
		b.flagRecompute(ctx, tx.ID)
		return installment, tx, &SagaError{TransactionID: tx.ID, Step: "update-transaction", Cause: err}
	}

	b.log.Info().Str("transaction", tx.ID).Str("amount", amount.String()).Msg("payment recorded")
	return installment, updated, nil
}

// RemovePayment deletes an installment and recomputes its transaction.
// The transaction's remaining balance re-increases accordingly.
func (b *Billing) RemovePayment(ctx context.Context, transactionID, installmentID string) (ledger.Transaction, error) {
	tx, err := b.getTransaction(ctx, transactionID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	installments, err := b.Installments(ctx, transactionID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	updated, _, err := ledger.RemovePayment(tx, installmentID, installments)
	if err != nil {
		return tx, err
	}

	if err := b.store.Delete(ctx, ColInstallments, installmentID); err != nil {
		return tx, err
	}
	if _, err := b.store.Update(ctx, ColTransactions, tx.ID, transactionPatch(updated)); err != nil {
		b.flagRecompute(ctx, tx.ID)
		return tx, &SagaError{TransactionID: tx.ID, Step: "update-transaction", Cause: err}
	}
	return updated, nil
}

// DeleteTransaction removes a transaction. Installments referencing it are
// left in place and show up in the payment ledger as orphans.
func (b *Billing) DeleteTransaction(ctx context.Context, transactionID string) error {
	return b.store.Delete(ctx, ColTransactions, transactionID)
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Reconcile recomputes every installment-type transaction from its full
// installment set and persists those whose stored totals differ. Repairs
// both flagged transactions and unflagged drift. Returns the number of
// transactions repaired.
func (b *Billing) Reconcile(ctx context.Context) (int, error) {
	txs, err := b.Transactions(ctx)
	if err != nil {
		return 0, err
	}
	ins, err := b.AllInstallments(ctx)
	if err != nil {
		return 0, err
	}

	byTx := make(map[string][]ledger.Installment)
	for _, in := range ins {
		byTx[in.TransactionID] = append(byTx[in.TransactionID], in)
	}

	repaired := 0
	for _, tx := range txs {
		if tx.PaymentType != ledger.PayInstallment {
			continue
		}
		updated := ledger.Recompute(tx, byTx[tx.ID])
		if !tx.NeedsRecompute &&
			tx.Paid.Equal(updated.Paid) &&
			tx.Remaining.Equal(updated.Remaining) &&
			tx.Status == updated.Status {
			continue
		}
		if _, err := b.store.Update(ctx, ColTransactions, tx.ID, transactionPatch(updated)); err != nil {
			return repaired, err
		}
		b.log.Info().Str("transaction", tx.ID).
			Str("paid", updated.Paid.String()).Msg("transaction reconciled")
		repaired++
	}
	return repaired, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *Billing) getTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	docs, err := b.store.List(ctx, ColTransactions, docstore.ListOptions{})
	if err != nil {
		return ledger.Transaction{}, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return decodeTransaction(doc), nil
		}
	}
	return ledger.Transaction{}, &docstore.NotFoundError{Collection: ColTransactions, ID: id}
}

// flagRecompute is best-effort: a failure here just means the next
// Reconcile finds the drift by comparison instead of by flag.
func (b *Billing) flagRecompute(ctx context.Context, transactionID string) {
	_, err := b.store.Update(ctx, ColTransactions, transactionID,
		map[string]any{"needsRecompute": true})
	if err != nil {
		b.log.Error().Err(err).Str("transaction", transactionID).Msg("flagging for recompute failed")
	}
}

func decodeTransactions(docs []docstore.Document) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeTransaction(doc))
	}
	return out
}

func decodeInstallments(docs []docstore.Document) []ledger.Installment {
	out := make([]ledger.Installment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeInstallment(doc))
	}
	return out
}
