package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/docstore/memory"
)

func TestMemoryStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	doc, err := store.Create(ctx, "patients", map[string]any{"patientName": "Maria Cruz"})
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, "Maria Cruz", doc.GetString("patientName"))
}

func TestMemoryStore_ListWithEqualityFilter(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.Create(ctx, "installments", map[string]any{"transactionId": "tx-1", "amount": "2000"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "installments", map[string]any{"transactionId": "tx-2", "amount": "500"})
	require.NoError(t, err)

	docs, err := store.List(ctx, "installments", docstore.Equal("transactionId", "tx-1"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2000", docs[0].GetString("amount"))
}

func TestMemoryStore_ListOrdersByStringField(t *testing.T) {
	// Dates are stored as RFC3339 strings, so string order is date order.
	store := memory.New()
	ctx := context.Background()

	for _, d := range []string{"2025-03-10T09:00:00Z", "2025-03-02T09:00:00Z", "2025-03-20T09:00:00Z"} {
		_, err := store.Create(ctx, "schedules", map[string]any{"date": d})
		require.NoError(t, err)
	}

	docs, err := store.List(ctx, "schedules", docstore.ListOptions{}.WithOrder("date", false))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "2025-03-02T09:00:00Z", docs[0].GetString("date"))
	assert.Equal(t, "2025-03-20T09:00:00Z", docs[2].GetString("date"))

	desc, err := store.List(ctx, "schedules", docstore.ListOptions{}.WithOrder("date", true))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-20T09:00:00Z", desc[0].GetString("date"))
}

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	doc, err := store.Create(ctx, "transactions", map[string]any{"paid": "0", "status": "ongoing"})
	require.NoError(t, err)

	updated, err := store.Update(ctx, "transactions", doc.ID, map[string]any{"paid": "5000"})
	require.NoError(t, err)

	assert.Equal(t, "5000", updated.GetString("paid"))
	assert.Equal(t, "ongoing", updated.GetString("status"), "untouched fields survive a merge")
}

func TestMemoryStore_UpdateUnknownID(t *testing.T) {
	store := memory.New()
	_, err := store.Update(context.Background(), "transactions", "nope", map[string]any{"paid": "1"})
	assert.True(t, docstore.IsNotFound(err))
}

func TestMemoryStore_DeleteThenList(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	doc, err := store.Create(ctx, "expenses", map[string]any{"title": "Gloves"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "expenses", doc.ID))
	assert.True(t, docstore.IsNotFound(store.Delete(ctx, "expenses", doc.ID)))

	docs, err := store.List(ctx, "expenses", docstore.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStore_SubscribeFiresPerMutation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	fired := make(chan struct{}, 8)
	unsubscribe := store.Subscribe("schedules", func() { fired <- struct{}{} })

	doc, err := store.Create(ctx, "schedules", map[string]any{"title": "Checkup"})
	require.NoError(t, err)
	_, err = store.Update(ctx, "schedules", doc.ID, map[string]any{"title": "Cleaning"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "schedules", doc.ID))

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("change callback %d not fired", i+1)
		}
	}

	// Other collections do not notify schedules subscribers.
	_, err = store.Create(ctx, "patients", map[string]any{"patientName": "Ana"})
	require.NoError(t, err)
	select {
	case <-fired:
		t.Fatal("unexpected callback for other collection")
	case <-time.After(50 * time.Millisecond):
	}

	unsubscribe()
	_, err = store.Create(ctx, "schedules", map[string]any{"title": "Followup"})
	require.NoError(t, err)
	select {
	case <-fired:
		t.Fatal("callback fired after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_ReturnedDocsAreCopies(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	doc, err := store.Create(ctx, "patients", map[string]any{"patientName": "Maria"})
	require.NoError(t, err)
	doc.Fields["patientName"] = "Hacked"

	docs, err := store.List(ctx, "patients", docstore.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Maria", docs[0].GetString("patientName"))
}
