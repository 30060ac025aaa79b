/*
Package docstore defines the document-store collaborator the clinic code
talks to.

PURPOSE:
  The application delegates all persistence to a hosted document database.
  This package captures the slice of that API the clinic actually uses:
  list with simple equality/order filters, create with a server-assigned id,
  update, delete, and a change subscription per collection. Everything above
  this interface is presentation and thin orchestration.

CONSISTENCY CONTRACT:
  The store serializes writes per document but offers NO cross-document
  transactions. Multi-document sequences (create an installment, then update
  its transaction) are the caller's responsibility; see clinic/billing.go
  for the compensation step.

IMPLEMENTATIONS:
  - docstore/memory:   map-backed, for tests and dev
  - docstore/sqlite:   single-file local store
  - docstore/postgres: jsonb-backed self-hosted store

SEE ALSO:
  - clinic/collections.go: Collection names and entity mapping
*/
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one stored record: a server-assigned id, a server-assigned
// creation timestamp, and a loosely-typed field map.
type Document struct {
	ID        string
	CreatedAt time.Time
	Fields    map[string]any
}

// Get returns a field value, or nil when absent.
func (d Document) Get(key string) any { return d.Fields[key] }

// GetString returns a field as a string, or "" when absent or mistyped.
func (d Document) GetString(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// GetBool returns a field as a bool, or false when absent or mistyped.
func (d Document) GetBool(key string) bool {
	b, _ := d.Fields[key].(bool)
	return b
}

// =============================================================================
// QUERIES
// =============================================================================

// Filter is an equality constraint on one field.
type Filter struct {
	Field string
	Value any
}

// Order sorts results by one field.
type Order struct {
	Field      string
	Descending bool
}

// ListOptions narrows and orders a List call. Zero value lists everything
// in store order.
type ListOptions struct {
	Filters []Filter
	OrderBy *Order
}

// Equal builds a single equality filter.
func Equal(field string, value any) ListOptions {
	return ListOptions{Filters: []Filter{{Field: field, Value: value}}}
}

// WithOrder attaches an ordering to the options.
func (o ListOptions) WithOrder(field string, descending bool) ListOptions {
	o.OrderBy = &Order{Field: field, Descending: descending}
	return o
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ChangeFunc is invoked after any mutation in a subscribed collection. The
// callback receives no payload: subscribers refetch the full collection and
// recompute, so no incremental patching is needed.
type ChangeFunc func()

// Store is the document-store collaborator. All blocking operations take a
// context; Subscribe is local registration and does not.
type Store interface {
	// List returns the documents of a collection matching opts, ordered
	// per opts.OrderBy.
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)

	// Create persists fields as a new document and returns it with the
	// server-assigned id and creation timestamp.
	Create(ctx context.Context, collection string, fields map[string]any) (Document, error)

	// Update merges fields into an existing document and returns the
	// updated document. Returns ErrNotFound for an unknown id.
	Update(ctx context.Context, collection string, id string, fields map[string]any) (Document, error)

	// Delete removes a document by id. Returns ErrNotFound for an
	// unknown id.
	Delete(ctx context.Context, collection string, id string) error

	// Subscribe registers fn to run after each mutation of collection.
	// The returned function unsubscribes.
	Subscribe(collection string, fn ChangeFunc) (unsubscribe func())
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("document not found")
)

// NotFoundError carries the collection and id of a missing document.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err indicates a missing document.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
