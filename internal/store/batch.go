package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

type op struct {
	kind   opKind
	path   string
	value  any
	fields Fields
	merge  bool
}

// Batch accumulates writes across documents. Commit applies all of them or none.
type Batch struct {
	ops []op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(path string, v any, opts ...SetOption) *Batch {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	b.ops = append(b.ops, op{kind: opSet, path: path, value: v, merge: o.merge})
	return b
}

func (b *Batch) Update(path string, f Fields) *Batch {
	b.ops = append(b.ops, op{kind: opUpdate, path: path, fields: f})
	return b
}

func (b *Batch) Delete(path string) *Batch {
	b.ops = append(b.ops, op{kind: opDelete, path: path})
	return b
}

// Len reports the number of queued writes.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Commit applies the batch in a single transaction and then notifies
// subscribers of every touched collection.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	if b == nil || len(b.ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	touched := make(map[string]struct{})
	now := time.Now().UTC().Format(time.RFC3339)
	for _, o := range b.ops {
		path, coll, id, err := splitDocPath(o.path)
		if err != nil {
			return err
		}
		if err := applyOp(ctx, tx, o, path, coll, id, now); err != nil {
			return err
		}
		touched[coll] = struct{}{}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	s.notify(touched)
	return nil
}

func applyOp(ctx context.Context, tx *sql.Tx, o op, path, coll, id, now string) error {
	switch o.kind {
	case opDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil

	case opSet:
		next, err := toObject(o.value)
		if err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
		if o.merge {
			cur, found, err := loadTx(ctx, tx, path)
			if err != nil {
				return err
			}
			if found {
				mergeObjects(cur, next)
				next = cur
			}
		}
		return writeTx(ctx, tx, path, coll, id, next, now)

	case opUpdate:
		cur, found, err := loadTx(ctx, tx, path)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("update %s: %w", path, ErrNotFound)
		}
		if err := applyFields(cur, o.fields); err != nil {
			return fmt.Errorf("update %s: %w", path, err)
		}
		return writeTx(ctx, tx, path, coll, id, cur, now)
	}
	return fmt.Errorf("unknown batch op %d", o.kind)
}

func loadTx(ctx context.Context, tx *sql.Tx, path string) (map[string]any, bool, error) {
	var data string
	err := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	m, err := decodeObject([]byte(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, true, nil
}

func writeTx(ctx context.Context, tx *sql.Tx, path, coll, id string, doc map[string]any, now string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (path, collection, doc_id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, coll, id, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
