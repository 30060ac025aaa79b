package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/docstore/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx, "transactions", map[string]any{
		"patientName": "Maria Cruz",
		"totalAmount": "5000",
		"paymentType": "installment",
	})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)

	docs, err := store.List(ctx, "transactions", docstore.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Maria Cruz", docs[0].GetString("patientName"))
	assert.Equal(t, doc.CreatedAt.Unix(), docs[0].CreatedAt.Unix())
}

func TestSQLiteStore_FilterAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []map[string]any{
		{"transactionId": "tx-1", "dateTransact": "2025-03-10T00:00:00Z", "amount": "2000"},
		{"transactionId": "tx-1", "dateTransact": "2025-03-02T00:00:00Z", "amount": "1000"},
		{"transactionId": "tx-2", "dateTransact": "2025-03-05T00:00:00Z", "amount": "500"},
	}
	for _, fields := range seed {
		_, err := store.Create(ctx, "installments", fields)
		require.NoError(t, err)
	}

	docs, err := store.List(ctx, "installments",
		docstore.Equal("transactionId", "tx-1").WithOrder("dateTransact", false))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1000", docs[0].GetString("amount"))
	assert.Equal(t, "2000", docs[1].GetString("amount"))
}

func TestSQLiteStore_UpdateMergesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx, "transactions", map[string]any{"paid": "0", "status": "ongoing"})
	require.NoError(t, err)

	updated, err := store.Update(ctx, "transactions", doc.ID, map[string]any{"paid": "5000", "status": "paid"})
	require.NoError(t, err)
	assert.Equal(t, "5000", updated.GetString("paid"))

	docs, err := store.List(ctx, "transactions", docstore.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "paid", docs[0].GetString("status"))
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "transactions", "missing", map[string]any{"paid": "1"})
	assert.True(t, docstore.IsNotFound(err))

	assert.True(t, docstore.IsNotFound(store.Delete(ctx, "transactions", "missing")))
}

func TestSQLiteStore_CollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "patients", map[string]any{"patientName": "Ana"})
	require.NoError(t, err)

	docs, err := store.List(ctx, "schedules", docstore.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}
