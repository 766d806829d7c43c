package audit

import "context"

// TailCache lets multiple processes share the hash-chain tail (the last
// event's hash + seq) and serialize appends across process boundaries. A
// Service with no TailCache reconciles the tail from storage on every
// append instead, which is correct but requires a single writer process.
type TailCache interface {
	// Acquire blocks until the cross-process append lock is held and
	// returns a release func. Acquire must be safe to call from multiple
	// goroutines/processes concurrently.
	Acquire(ctx context.Context) (release func(), err error)
	// GetTail returns the cached tail hash/seq. ok is false on a cold
	// cache, in which case the caller reconciles from storage.
	GetTail(ctx context.Context) (hash string, seq int64, ok bool, err error)
	SetTail(ctx context.Context, hash string, seq int64) error
}
