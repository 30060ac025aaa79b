/*
Package postgres provides a docstore.Store backed by PostgreSQL.

PURPOSE:
  The self-hosted option for multi-workstation clinics. Same one-table
  layout as the sqlite store with the fields in a jsonb column; equality
  filters are pushed down via the jsonb containment operator and ordering
  is applied in Go, matching the other implementations.

CHANGE NOTIFICATION:
  Process-local fan-out only, same as sqlite. Cross-process LISTEN/NOTIFY
  is a deployment concern the collaborator contract does not require.
*/
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/senoto/clinic-engine/docstore"
)

// Store implements docstore.Store on a PostgreSQL database.
type Store struct {
	db *sql.DB

	notifier docstore.Notifier
}

// New connects with the given DSN and ensures the schema exists.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
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
		fields JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_fields
		ON documents USING GIN (fields);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (s *Store) List(ctx context.Context, collection string, opts docstore.ListOptions) ([]docstore.Document, error) {
	query := `SELECT id, fields, created_at FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(opts.Filters) > 0 {
		match := make(map[string]any, len(opts.Filters))
		for _, f := range opts.Filters {
			match[f.Field] = f.Value
		}
		matchJSON, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filters: %w", err)
		}
		query += ` AND fields @> $2`
		args = append(args, string(matchJSON))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id         string
			fieldsJSON []byte
			createdAt  time.Time
		)
		if err := rows.Scan(&id, &fieldsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		docs = append(docs, docstore.Document{ID: id, CreatedAt: createdAt, Fields: fields})
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at) VALUES ($1, $2, $3, $4)`,
		collection, doc.ID, string(fieldsJSON), doc.CreatedAt,
	)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to create in %s: %w", collection, err)
	}

	s.notifier.Notify(collection)
	return doc, nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, fields map[string]any) (docstore.Document, error) {
	patchJSON, err := json.Marshal(fields)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to encode document: %w", err)
	}

	var (
		fieldsJSON []byte
		createdAt  time.Time
	)
	err = s.db.QueryRowContext(ctx,
		`UPDATE documents SET fields = fields || $3::jsonb
		 WHERE collection = $1 AND id = $2
		 RETURNING fields, created_at`,
		collection, id, string(patchJSON),
	).Scan(&fieldsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return docstore.Document{}, &docstore.NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	var merged map[string]any
	if err := json.Unmarshal(fieldsJSON, &merged); err != nil {
		return docstore.Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	s.notifier.Notify(collection)
	return docstore.Document{ID: id, CreatedAt: createdAt, Fields: merged}, nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
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
