package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/msomdec/devconnector/internal/domain"
)

// DocumentStore implements domain.DocumentStore with JSON bodies in SQLite.
// Sub-collection mutations run as read-modify-write inside a transaction;
// with the pool capped at one connection no two transactions interleave.
type DocumentStore struct {
	db *sql.DB
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) FindByID(ctx context.Context, coll domain.Collection, id string, out any) error {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", coll, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeErr("find document by id", err)
	}
	return decode(body, out)
}

func (s *DocumentStore) FindOne(ctx context.Context, coll domain.Collection, filter domain.Filter, out any) error {
	where, args := whereClause(coll, filter)
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE "+where+" ORDER BY seq LIMIT 1", args...,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeErr("find one document", err)
	}
	return decode(body, out)
}

func (s *DocumentStore) Find(ctx context.Context, coll domain.Collection, filter domain.Filter, sortDesc string, out any) error {
	where, args := whereClause(coll, filter)
	query := "SELECT body FROM documents WHERE " + where
	if sortDesc != "" {
		query += " ORDER BY julianday(json_extract(body, ?)) DESC, seq DESC"
		args = append(args, "$."+sortDesc)
	} else {
		query += " ORDER BY seq"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return storeErr("find documents", err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for n := 0; rows.Next(); n++ {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return storeErr("scan document", err)
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(body)
	}
	if err := rows.Err(); err != nil {
		return storeErr("iterate documents", err)
	}
	buf.WriteByte(']')
	return decode(buf.Bytes(), out)
}

func (s *DocumentStore) Insert(ctx context.Context, coll domain.Collection, doc domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		coll, doc.DocumentID(), body, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicate
		}
		return storeErr("insert document", err)
	}
	return nil
}

func (s *DocumentStore) UpdateFields(ctx context.Context, coll domain.Collection, id string, fields map[string]any, out any) error {
	return s.mutate(ctx, coll, id, out, func(doc map[string]any) error {
		for path, v := range fields {
			nv, err := normalize(v)
			if err != nil {
				return err
			}
			if err := setPath(doc, path, nv); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DocumentStore) DeleteByID(ctx context.Context, coll domain.Collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", coll, id,
	)
	if err != nil {
		return storeErr("delete document", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) AppendToSubcollection(ctx context.Context, coll domain.Collection, id, path string, elem any, opts domain.AppendOptions, out any) error {
	return s.mutate(ctx, coll, id, out, func(doc map[string]any) error {
		list, err := listAt(doc, path)
		if err != nil {
			return err
		}
		if opts.Unless != nil && indexOf(list, *opts.Unless) >= 0 {
			return domain.ErrElementExists
		}

		nv, err := normalize(elem)
		if err != nil {
			return err
		}
		if opts.AtFront {
			list = append([]any{nv}, list...)
		} else {
			list = append(list, nv)
		}
		return setPath(doc, path, list)
	})
}

func (s *DocumentStore) RemoveFromSubcollection(ctx context.Context, coll domain.Collection, id, path string, m domain.Match, out any) error {
	return s.mutate(ctx, coll, id, out, func(doc map[string]any) error {
		list, err := listAt(doc, path)
		if err != nil {
			return err
		}

		kept := make([]any, 0, len(list))
		for _, el := range list {
			if !matches(el, m) {
				kept = append(kept, el)
			}
		}
		if len(kept) == len(list) {
			return domain.ErrElementNotFound
		}
		return setPath(doc, path, kept)
	})
}

// mutate loads one document, applies fn and writes it back in a single
// transaction. Errors returned by fn abort the write and are passed through.
func (s *DocumentStore) mutate(ctx context.Context, coll domain.Collection, id string, out any, fn func(doc map[string]any) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer tx.Rollback()

	var body []byte
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", coll, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeErr("load document", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return storeErr("decode stored document", err)
	}
	if err := fn(doc); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		updated, time.Now().UTC(), coll, id,
	); err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicate
		}
		return storeErr("update document", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return decode(updated, out)
}

func whereClause(coll domain.Collection, filter domain.Filter) (string, []any) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := []string{"collection = ?"}
	args := []any{coll}
	for _, k := range keys {
		clauses = append(clauses, "json_extract(body, ?) = ?")
		args = append(args, "$."+k, filter[k])
	}
	return strings.Join(clauses, " AND "), args
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// normalize converts v into the generic JSON shape (maps, []any, strings...)
// so it can be spliced into a decoded document.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func setPath(doc map[string]any, path string, v any) error {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			if cur[p] != nil {
				return fmt.Errorf("%w: field %q is not an object", domain.ErrInvalidInput, p)
			}
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
	return nil
}

func listAt(doc map[string]any, path string) ([]any, error) {
	var cur any = doc
	for _, p := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, nil
		}
		cur = m[p]
	}
	if cur == nil {
		return nil, nil
	}
	list, ok := cur.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not a list", domain.ErrInvalidInput, path)
	}
	return list, nil
}

func indexOf(list []any, m domain.Match) int {
	for i, el := range list {
		if matches(el, m) {
			return i
		}
	}
	return -1
}

func matches(el any, m domain.Match) bool {
	obj, ok := el.(map[string]any)
	if !ok {
		return false
	}
	v, ok := obj[m.Field].(string)
	return ok && v == m.Value
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
