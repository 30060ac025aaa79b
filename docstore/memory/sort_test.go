package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/senoto/clinic-engine/docstore"
)

func TestSortDocs_CreatedAtWholeSecondBeforeFractional(t *testing.T) {
	// GIVEN: Two documents created within the same second, the earlier one
	//        on the exact second boundary
	// WHEN: Sorted by createdAt
	// THEN: Chronological order holds; the RFC3339 rendering of the whole
	//       second ("...00Z") would string-sort after "...00.5Z"

	whole := time.Date(2025, time.June, 9, 9, 0, 0, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)

	docs := []docstore.Document{
		{ID: "b", CreatedAt: fractional},
		{ID: "a", CreatedAt: whole},
	}

	sortDocs(docs, &docstore.Order{Field: "createdAt"})
	assert.Equal(t, []string{"a", "b"}, []string{docs[0].ID, docs[1].ID})

	sortDocs(docs, &docstore.Order{Field: "createdAt", Descending: true})
	assert.Equal(t, []string{"b", "a"}, []string{docs[0].ID, docs[1].ID})
}

func TestSortDocs_SameSecondPaymentsOrderDeterministically(t *testing.T) {
	// GIVEN: Two installments stamped with the same second-resolution date
	// WHEN: Sorted by that date
	// THEN: Creation time breaks the tie, so the order is stable across runs

	date := "2025-06-09T09:00:00Z"
	first := time.Date(2025, time.June, 9, 9, 0, 0, 100, time.UTC)
	second := first.Add(time.Millisecond)

	docs := []docstore.Document{
		{ID: "later", CreatedAt: second, Fields: map[string]any{"dateTransact": date}},
		{ID: "earlier", CreatedAt: first, Fields: map[string]any{"dateTransact": date}},
	}

	sortDocs(docs, &docstore.Order{Field: "dateTransact"})
	assert.Equal(t, []string{"earlier", "later"}, []string{docs[0].ID, docs[1].ID})
}
