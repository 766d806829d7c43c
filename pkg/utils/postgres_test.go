package utils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeConn is a minimal database/sql/driver.Conn that only tracks whether
// Commit or Rollback was called, so WithTx's control flow can be exercised
// without a real database.
type fakeConn struct {
	mu         sync.Mutex
	committed  bool
	rolledBack bool
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *fakeConn) Close() error                              { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{conn: c}, nil }

type fakeTx struct{ conn *fakeConn }

func (t *fakeTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.rolledBack = true
	return nil
}

type fakeDriver struct{ conn *fakeConn }

func (d *fakeDriver) Open(name string) (driver.Conn, error) { return d.conn, nil }

var fakeDriverSeq atomic.Int64

func newFakeDB(t *testing.T) (*sql.DB, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	name := fmt.Sprintf("fakedb-%d", fakeDriverSeq.Add(1))
	sql.Register(name, &fakeDriver{conn: conn})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open fake db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, conn
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, conn := newFakeDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if !conn.committed {
		t.Fatal("expected tx to be committed")
	}
	if conn.rolledBack {
		t.Fatal("expected tx not to be rolled back")
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, conn := newFakeDB(t)
	wantErr := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.committed {
		t.Fatal("expected tx not to be committed")
	}
	if !conn.rolledBack {
		t.Fatal("expected tx to be rolled back")
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, conn := newFakeDB(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
		conn.mu.Lock()
		defer conn.mu.Unlock()
		if conn.committed {
			t.Fatal("expected tx not to be committed")
		}
		if !conn.rolledBack {
			t.Fatal("expected tx to be rolled back")
		}
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		panic("fn panicked")
	})
}
