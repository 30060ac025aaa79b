// Package memory provides an in-memory docstore.Store for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/senoto/clinic-engine/docstore"
)

// =============================================================================
// MEMORY STORE - map-backed implementation
// =============================================================================

// Store keeps documents in maps guarded by an RWMutex. Change callbacks run
// after the lock is released so subscribers can refetch immediately.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]docstore.Document

	notifier docstore.Notifier
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]docstore.Document),
	}
}

func (s *Store) List(_ context.Context, collection string, opts docstore.ListOptions) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []docstore.Document
	for _, doc := range s.collections[collection] {
		if matches(doc, opts.Filters) {
			result = append(result, cloneDoc(doc))
		}
	}
	sortDocs(result, opts.OrderBy)
	return result, nil
}

func (s *Store) Create(_ context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	doc := docstore.Document{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Fields:    cloneFields(fields),
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]docstore.Document)
	}
	s.collections[collection][doc.ID] = doc
	s.mu.Unlock()

	s.notifier.Notify(collection)
	return cloneDoc(doc), nil
}

func (s *Store) Update(_ context.Context, collection string, id string, fields map[string]any) (docstore.Document, error) {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return docstore.Document{}, &docstore.NotFoundError{Collection: collection, ID: id}
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.notifier.Notify(collection)
	return cloneDoc(doc), nil
}

func (s *Store) Delete(_ context.Context, collection string, id string) error {
	s.mu.Lock()
	if _, ok := s.collections[collection][id]; !ok {
		s.mu.Unlock()
		return &docstore.NotFoundError{Collection: collection, ID: id}
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notifier.Notify(collection)
	return nil
}

func (s *Store) Subscribe(collection string, fn docstore.ChangeFunc) func() {
	return s.notifier.Subscribe(collection, fn)
}

// =============================================================================
// HELPERS
// =============================================================================

func matches(doc docstore.Document, filters []docstore.Filter) bool {
	for _, f := range filters {
		if doc.Fields[f.Field] != f.Value {
			return false
		}
	}
	return true
}

// sortDocs orders by a field. Dates are stored as RFC3339 strings and
// amounts as decimal strings, so string comparison is chronological for the
// fields callers order by; createdAt compares the timestamps themselves
// because RFC3339 drops trailing fractional zeros and the rendered strings
// do not sort chronologically. Missing order falls back to id for stability.
func sortDocs(docs []docstore.Document, order *docstore.Order) {
	if order == nil {
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		return
	}
	less := func(i, j int) bool {
		a, b := fieldKey(docs[i], order.Field), fieldKey(docs[j], order.Field)
		if a != b {
			return a < b
		}
		return docTieBreak(docs[i], docs[j])
	}
	if order.Field == "createdAt" {
		less = func(i, j int) bool { return docTieBreak(docs[i], docs[j]) }
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if order.Descending {
			return less(j, i)
		}
		return less(i, j)
	})
}

func fieldKey(doc docstore.Document, field string) string {
	s, _ := doc.Fields[field].(string)
	return s
}

// docTieBreak keeps equal-keyed documents in a deterministic order: creation
// time first, id second. Dates on payment rows have second resolution, so
// ties within a second are common.
func docTieBreak(a, b docstore.Document) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func cloneDoc(doc docstore.Document) docstore.Document {
	doc.Fields = cloneFields(doc.Fields)
	return doc
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
