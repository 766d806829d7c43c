// Package storage defines the document-oriented persistence contract the
// rest of the accounting core is built on: a (table, id) addressed store
// with explicit transactions. Two implementations satisfy Store — an
// in-memory variant for tests (package storage/memory) and a Postgres-backed
// variant (package storage/postgres).
package storage

import "context"

// Document is an opaque, JSON-serializable attribute map. Storage never
// interprets its contents beyond the filter-equality semantics of Find.
type Document map[string]any

// Store is the persistence contract every accounting-core component is
// built on. All methods are safe for concurrent use. Within an Atomic
// closure, writes are only visible to callers sharing that closure's ctx;
// reads outside the closure never observe uncommitted writes.
type Store interface {
	// Save upserts a record. Last-writer-wins within a transaction.
	Save(ctx context.Context, table, id string, data Document) error
	// Load returns the record, or ok=false if it does not exist (or is not
	// visible, e.g. belongs to a different tenant).
	Load(ctx context.Context, table, id string) (Document, bool, error)
	// LoadAll returns every visible record in table, ordered by created_at
	// then insertion order.
	LoadAll(ctx context.Context, table string) ([]Document, error)
	// Delete removes a record, returning whether it existed (and was visible).
	Delete(ctx context.Context, table, id string) (bool, error)
	// Exists reports whether a visible record exists at (table, id).
	Exists(ctx context.Context, table, id string) (bool, error)
	// Find returns every visible record whose top-level fields match filter
	// under AND/equality semantics. No joins, no nested-field matching.
	Find(ctx context.Context, table string, filter Document) ([]Document, error)
	// Count returns the number of visible records in table.
	Count(ctx context.Context, table string) (int, error)
	// ClearTable removes every record from table. Administrative; fails
	// under TenantAwareStorage when a tenant is set.
	ClearTable(ctx context.Context, table string) error
	// Atomic runs fn inside a transaction: commits on success, rolls back on
	// any error (including a panic, which is re-raised after rollback).
	// Nesting an Atomic call inside another is supported and must not
	// deadlock (the outer transaction is reused, not re-entered).
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
