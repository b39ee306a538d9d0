package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// Document is one stored JSON document.
type Document struct {
	Path string
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

type setOptions struct {
	merge bool
}

// SetOption configures Set.
type SetOption func(*setOptions)

// Merge makes Set deep-merge into an existing document instead of replacing it.
func Merge() SetOption {
	return func(o *setOptions) { o.merge = true }
}

// Get decodes the document at path into dst. It returns ErrNotFound when the
// document does not exist.
func (s *Store) Get(ctx context.Context, path string, dst any) error {
	clean, _, _, err := splitDocPath(path)
	if err != nil {
		return err
	}

	var data string
	err = s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, clean).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get %s: %w", clean, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", clean, err)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("decode %s: %w", clean, err)
	}
	return nil
}

// Set writes v as the document at path, replacing it unless Merge is given.
func (s *Store) Set(ctx context.Context, path string, v any, opts ...SetOption) error {
	return s.Commit(ctx, NewBatch().Set(path, v, opts...))
}

// Update applies partial fields to an existing document. It fails with
// ErrNotFound if the document is absent.
func (s *Store) Update(ctx context.Context, path string, f Fields) error {
	return s.Commit(ctx, NewBatch().Update(path, f))
}

// Delete removes the document at path. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	return s.Commit(ctx, NewBatch().Delete(path))
}

// List returns every document directly inside collection, ordered by path.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	coll, err := cleanCollection(collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, doc_id, data FROM documents WHERE collection = ? ORDER BY path`, coll,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data string
		if err := rows.Scan(&d.Path, &d.ID, &data); err != nil {
			return nil, err
		}
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
