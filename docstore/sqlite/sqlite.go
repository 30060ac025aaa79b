/*
Package sqlite provides a single-file docstore.Store.

PURPOSE:
  A local, self-contained document store for clinics that run the app on a
  single machine. Documents live in one table keyed by (collection, id) with
  the fields as a JSON blob; the same layout ports to any SQL backend.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers don't block
  each other, one writer at a time, better crash recovery.

FILTERING:
  Equality filters and ordering are applied in Go after loading the
  collection. Collections here are small per-clinic sets (patients,
  appointments, payments); a loaded snapshot is also exactly what the
  engines recompute from.

CHANGE NOTIFICATION:
  Subscribe callbacks fire for mutations made through this process only.
  A hosted backend would push remote changes too; locally there is a single
  writer, so process-local fan-out is sufficient.

SEE ALSO:
  - docstore/docstore.go: Interface definitions
  - docstore/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/senoto/clinic-engine/docstore"
)

// Store implements docstore.Store on a SQLite file.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	notifier docstore.Notifier
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		fields_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection
		ON documents(collection);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (s *Store) List(ctx context.Context, collection string, opts docstore.ListOptions) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields_json, created_at FROM documents WHERE collection = ?`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id, fieldsJSON, createdAt string
		if err := rows.Scan(&id, &fieldsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		doc, err := decodeDocument(id, fieldsJSON, createdAt)
		if err != nil {
			return nil, err
		}
		if matches(doc, opts.Filters) {
			docs = append(docs, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortDocs(docs, opts.OrderBy)
	return docs, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	doc := docstore.Document{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Fields:    fields,
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields_json, created_at) VALUES (?, ?, ?, ?)`,
		collection, doc.ID, string(fieldsJSON), doc.CreatedAt.Format(time.RFC3339Nano),
	)
	s.mu.Unlock()
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to create in %s: %w", collection, err)
	}

	s.notifier.Notify(collection)
	return doc, nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, fields map[string]any) (docstore.Document, error) {
	s.mu.Lock()
	doc, err := s.getLocked(ctx, collection, id)
	if err != nil {
		s.mu.Unlock()
		return docstore.Document{}, err
	}

	for k, v := range fields {
		doc.Fields[k] = v
	}
	fieldsJSON, err := json.Marshal(doc.Fields)
	if err != nil {
		s.mu.Unlock()
		return docstore.Document{}, fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET fields_json = ? WHERE collection = ? AND id = ?`,
		string(fieldsJSON), collection, id,
	)
	s.mu.Unlock()
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	s.notifier.Notify(collection)
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &docstore.NotFoundError{Collection: collection, ID: id}
	}

	s.notifier.Notify(collection)
	return nil
}

func (s *Store) Subscribe(collection string, fn docstore.ChangeFunc) func() {
	return s.notifier.Subscribe(collection, fn)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) getLocked(ctx context.Context, collection, id string) (docstore.Document, error) {
	var fieldsJSON, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields_json, created_at FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&fieldsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return docstore.Document{}, &docstore.NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeDocument(id, fieldsJSON, createdAt)
}

func decodeDocument(id, fieldsJSON, createdAt string) (docstore.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to parse created_at of %s: %w", id, err)
	}
	return docstore.Document{ID: id, CreatedAt: created, Fields: fields}, nil
}

func matches(doc docstore.Document, filters []docstore.Filter) bool {
	for _, f := range filters {
		if doc.Fields[f.Field] != f.Value {
			return false
		}
	}
	return true
}

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
		// RFC3339 drops trailing fractional zeros, so the rendered strings do
		// not sort chronologically.
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

func docTieBreak(a, b docstore.Document) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
