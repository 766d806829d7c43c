// Package postgres implements storage.Store over database/sql using the
// pgx/v5 stdlib driver. Each logical table is a physical table with a JSONB
// document column; Atomic maps directly onto a *sql.Tx carried in the
// context, mirroring the teacher's pkg/utils.WithTx helper.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"
	"github.com/nexum-core/ledger/pkg/utils"
)

var validTableName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store is a Postgres-backed storage.Store. Tables are created lazily on
// first use, one physical table per logical table name.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func (s *Store) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// Atomic runs fn inside a *sql.Tx, via pkg/utils.WithTx. Nesting reuses the
// outer transaction instead of opening a second one, so it never deadlocks.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	var fnErr error
	txErr := utils.WithTx(ctx, s.db, nil, func(txCtx context.Context, tx *sql.Tx) error {
		fnErr = fn(context.WithValue(txCtx, txKey{}, tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if txErr != nil {
		return coreerr.StorageTransient(txErr, "transaction")
	}
	return nil
}

func physicalTable(name string) (string, error) {
	if !validTableName.MatchString(name) {
		return "", coreerr.Validation("invalid table name %q", name)
	}
	return "ledger_store_" + name, nil
}

func (s *Store) ensureTable(ctx context.Context, table string) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq BIGSERIAL
)`, table)
	if _, err := s.conn(ctx).ExecContext(ctx, ddl); err != nil {
		return coreerr.StorageFatal(err, "create table %s", table)
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_data ON %s USING GIN (data)`, table, table)
	if _, err := s.conn(ctx).ExecContext(ctx, idx); err != nil {
		return coreerr.StorageFatal(err, "create index on %s", table)
	}
	return nil
}

func timestampOf(data storage.Document, key string) time.Time {
	if v, ok := data[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func (s *Store) Save(ctx context.Context, table, id string, data storage.Document) error {
	phys, err := physicalTable(table)
	if err != nil {
		return err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return coreerr.Validation("marshal document: %v", err)
	}
	createdAt := timestampOf(data, "created_at")
	updatedAt := timestampOf(data, "updated_at")

	q := fmt.Sprintf(`
INSERT INTO %s (id, data, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
`, phys)
	if _, err := s.conn(ctx).ExecContext(ctx, q, id, payload, createdAt, updatedAt); err != nil {
		return coreerr.StorageTransient(err, "save %s/%s", table, id)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, table, id string) (storage.Document, bool, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return nil, false, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return nil, false, err
	}

	q := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, phys)
	var raw []byte
	if err := s.conn(ctx).QueryRowContext(ctx, q, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, coreerr.StorageTransient(err, "load %s/%s", table, id)
	}
	var doc storage.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, coreerr.StorageFatal(err, "unmarshal %s/%s", table, id)
	}
	return doc, true, nil
}

func (s *Store) scanRows(rows *sql.Rows) ([]storage.Document, error) {
	defer rows.Close()
	var out []storage.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, coreerr.StorageTransient(err, "scan row")
		}
		var doc storage.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, coreerr.StorageFatal(err, "unmarshal row")
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, coreerr.StorageTransient(err, "iterate rows")
	}
	return out, nil
}

func (s *Store) LoadAll(ctx context.Context, table string) ([]storage.Document, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT data FROM %s ORDER BY created_at, seq`, phys)
	rows, err := s.conn(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, coreerr.StorageTransient(err, "load_all %s", table)
	}
	return s.scanRows(rows)
}

func (s *Store) Delete(ctx context.Context, table, id string) (bool, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return false, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return false, err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, phys)
	res, err := s.conn(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return false, coreerr.StorageTransient(err, "delete %s/%s", table, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, coreerr.StorageTransient(err, "rows affected %s/%s", table, id)
	}
	return n > 0, nil
}

func (s *Store) Exists(ctx context.Context, table, id string) (bool, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return false, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return false, err
	}
	q := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, phys)
	var exists bool
	if err := s.conn(ctx).QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, coreerr.StorageTransient(err, "exists %s/%s", table, id)
	}
	return exists, nil
}

func (s *Store) Find(ctx context.Context, table string, filter storage.Document) ([]storage.Document, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return s.LoadAll(ctx, table)
	}
	payload, err := json.Marshal(filter)
	if err != nil {
		return nil, coreerr.Validation("marshal filter: %v", err)
	}
	q := fmt.Sprintf(`SELECT data FROM %s WHERE data @> $1::jsonb ORDER BY created_at, seq`, phys)
	rows, err := s.conn(ctx).QueryContext(ctx, q, payload)
	if err != nil {
		return nil, coreerr.StorageTransient(err, "find %s", table)
	}
	return s.scanRows(rows)
}

func (s *Store) Count(ctx context.Context, table string) (int, error) {
	phys, err := physicalTable(table)
	if err != nil {
		return 0, err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return 0, err
	}
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, phys)
	var n int
	if err := s.conn(ctx).QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, coreerr.StorageTransient(err, "count %s", table)
	}
	return n, nil
}

func (s *Store) ClearTable(ctx context.Context, table string) error {
	phys, err := physicalTable(table)
	if err != nil {
		return err
	}
	if err := s.ensureTable(ctx, phys); err != nil {
		return err
	}
	q := fmt.Sprintf(`TRUNCATE TABLE %s`, phys)
	if _, err := s.conn(ctx).ExecContext(ctx, q); err != nil {
		return coreerr.StorageFatal(err, "clear table %s", table)
	}
	return nil
}
