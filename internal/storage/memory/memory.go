// Package memory is an in-memory storage.Store for tests. It provides true
// rollback via a shadow write-set rather than pretending atomic blocks
// cannot fail: Atomic takes the store's single mutex for the duration of
// the closure (the "process-wide lock" spec.md §5 describes) and buffers
// every write/delete/clear in an overlay; the overlay is merged into the
// base tables only if the closure returns nil, and discarded otherwise.
// This is the decision recorded for spec.md's Open Question on in-memory
// transactional semantics — see DESIGN.md.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"
)

type record struct {
	doc storage.Document
	seq int64
}

type tableData struct {
	docs map[string]record
}

// Store is a thread-safe, in-memory storage.Store.
type Store struct {
	mu     sync.Mutex
	tables map[string]*tableData
	seq    int64
}

func New() *Store {
	return &Store{tables: make(map[string]*tableData)}
}

type txnKey struct{}

type overlayTable struct {
	writes  map[string]storage.Document
	deletes map[string]bool
	cleared bool
}

type overlay struct {
	tables map[string]*overlayTable
}

func overlayFromContext(ctx context.Context) *overlay {
	v, _ := ctx.Value(txnKey{}).(*overlay)
	return v
}

func (s *Store) table(name string) *tableData {
	t, ok := s.tables[name]
	if !ok {
		t = &tableData{docs: make(map[string]record)}
		s.tables[name] = t
	}
	return t
}

func (o *overlay) table(name string) *overlayTable {
	t, ok := o.tables[name]
	if !ok {
		t = &overlayTable{writes: make(map[string]storage.Document), deletes: make(map[string]bool)}
		o.tables[name] = t
	}
	return t
}

func clone(d storage.Document) storage.Document {
	out := make(storage.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Atomic acquires the store-wide lock for the duration of fn and buffers
// every write in a shadow overlay, merging it into the base tables only on
// success. Calling Atomic from within an already-open Atomic reuses the
// existing transaction instead of re-locking, so nesting never deadlocks.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if overlayFromContext(ctx) != nil {
		// Already inside a transaction: reuse it.
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ov := &overlay{tables: make(map[string]*overlayTable)}
	txCtx := context.WithValue(ctx, txnKey{}, ov)

	defer func() {
		if p := recover(); p != nil {
			err = coreerr.StorageFatal(nil, "panic during atomic block: %v", p)
			panic(p)
		}
	}()

	err = fn(txCtx)
	if err != nil {
		return err
	}

	for name, ot := range ov.tables {
		t := s.table(name)
		if ot.cleared {
			t.docs = make(map[string]record)
		}
		for id := range ot.deletes {
			delete(t.docs, id)
		}
		for id, doc := range ot.writes {
			s.seq++
			t.docs[id] = record{doc: clone(doc), seq: s.seq}
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, table, id string, data storage.Document) error {
	if ov := overlayFromContext(ctx); ov != nil {
		ov.table(table).writes[id] = clone(data)
		delete(ov.table(table).deletes, id)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.table(table).docs[id] = record{doc: clone(data), seq: s.seq}
	return nil
}

func (s *Store) Load(ctx context.Context, table, id string) (storage.Document, bool, error) {
	if ov := overlayFromContext(ctx); ov != nil {
		ot := ov.table(table)
		if doc, ok := ot.writes[id]; ok {
			return clone(doc), true, nil
		}
		if ot.deletes[id] || ot.cleared {
			return nil, false, nil
		}
		r, ok := s.table(table).docs[id]
		if !ok {
			return nil, false, nil
		}
		return clone(r.doc), true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.table(table).docs[id]
	if !ok {
		return nil, false, nil
	}
	return clone(r.doc), true, nil
}

func (s *Store) visibleDocs(ctx context.Context, tableName string) []record {
	ov := overlayFromContext(ctx)
	if ov == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	base := s.table(tableName).docs
	merged := make(map[string]record, len(base))
	for id, r := range base {
		merged[id] = r
	}

	if ov != nil {
		ot := ov.table(tableName)
		if ot.cleared {
			merged = make(map[string]record)
		}
		for id := range ot.deletes {
			delete(merged, id)
		}
		for id, doc := range ot.writes {
			merged[id] = record{doc: doc, seq: -1}
		}
	}

	out := make([]record, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	return out
}

func (s *Store) LoadAll(ctx context.Context, table string) ([]storage.Document, error) {
	recs := s.visibleDocs(ctx, table)
	sort.SliceStable(recs, func(i, j int) bool {
		ci, _ := recs[i].doc["created_at"].(string)
		cj, _ := recs[j].doc["created_at"].(string)
		if ci != cj {
			return ci < cj
		}
		return recs[i].seq < recs[j].seq
	})
	out := make([]storage.Document, 0, len(recs))
	for _, r := range recs {
		out = append(out, clone(r.doc))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, table, id string) (bool, error) {
	_, ok, err := s.Load(ctx, table, id)
	if err != nil || !ok {
		return false, err
	}

	if ov := overlayFromContext(ctx); ov != nil {
		ot := ov.table(table)
		delete(ot.writes, id)
		ot.deletes[id] = true
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(table)
	if _, ok := t.docs[id]; !ok {
		return false, nil
	}
	delete(t.docs, id)
	return true, nil
}

func (s *Store) Exists(ctx context.Context, table, id string) (bool, error) {
	_, ok, err := s.Load(ctx, table, id)
	return ok, err
}

func matches(doc storage.Document, filter storage.Document) bool {
	for k, v := range filter {
		dv, ok := doc[k]
		if !ok || dv != v {
			return false
		}
	}
	return true
}

func (s *Store) Find(ctx context.Context, table string, filter storage.Document) ([]storage.Document, error) {
	all, err := s.LoadAll(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Document, 0, len(all))
	for _, doc := range all {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, table string) (int, error) {
	recs := s.visibleDocs(ctx, table)
	return len(recs), nil
}

func (s *Store) ClearTable(ctx context.Context, table string) error {
	if ov := overlayFromContext(ctx); ov != nil {
		ot := ov.table(table)
		ot.cleared = true
		ot.writes = make(map[string]storage.Document)
		ot.deletes = make(map[string]bool)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = &tableData{docs: make(map[string]record)}
	return nil
}
