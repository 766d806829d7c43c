// Package audit implements the hash-chained, append-only audit trail.
// Every mutation elsewhere in the system is expected to log through
// Service.LogEvent; nothing here ever updates or deletes a record.
package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"

	"github.com/google/uuid"
)

const defaultTable = "audit_events"

// Service owns the hash chain. With no TailCache it is safe for concurrent
// use within a single process (mu serializes LogEvent) but assumes it is
// the only writer to the underlying store; with a TailCache multiple
// processes may share one store safely.
type Service struct {
	store storage.Store
	table string
	cache TailCache
	mu    sync.Mutex
	clock func() time.Time
}

type Option func(*Service)

func WithTable(table string) Option {
	return func(s *Service) { s.table = table }
}

func WithTailCache(cache TailCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, table: defaultTable, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tail returns the current chain tail (hash, seq), reconciling from storage
// when no cache is configured or the cache is cold.
func (s *Service) tail(ctx context.Context) (string, int64, error) {
	if s.cache != nil {
		if hash, seq, ok, err := s.cache.GetTail(ctx); err != nil {
			return "", 0, err
		} else if ok {
			return hash, seq, nil
		}
	}
	return s.reconcileTail(ctx)
}

func (s *Service) reconcileTail(ctx context.Context) (string, int64, error) {
	events, err := s.loadSorted(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(events) == 0 {
		return "", 0, nil
	}
	last := events[len(events)-1]
	return last.CurrentHash, last.Seq, nil
}

func (s *Service) loadSorted(ctx context.Context) ([]Event, error) {
	docs, err := s.store.LoadAll(ctx, s.table)
	if err != nil {
		return nil, err
	}
	return documentsToSortedEvents(docs), nil
}

func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].Seq < events[j].Seq
	})
}

// LogEvent appends one event to the chain, computing previous_hash from the
// current tail and current_hash over its own canonical fields.
func (s *Service) LogEvent(ctx context.Context, eventType EventType, entityType, entityID string, metadata map[string]any, userID, sessionID string) (Event, error) {
	if eventType == "" {
		return Event{}, coreerr.Validation("event_type is required")
	}
	if entityType == "" || entityID == "" {
		return Event{}, coreerr.Validation("entity_type and entity_id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		release, err := s.cache.Acquire(ctx)
		if err != nil {
			return Event{}, coreerr.StorageTransient(err, "acquire audit append lock")
		}
		defer release()
	}

	prevHash, prevSeq, err := s.tail(ctx)
	if err != nil {
		return Event{}, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	ev := Event{
		ID:           uuid.NewString(),
		CreatedAt:    s.clock().UTC(),
		Seq:          prevSeq + 1,
		Type:         eventType,
		EntityType:   entityType,
		EntityID:     entityID,
		PreviousHash: prevHash,
		UserID:       userID,
		SessionID:    sessionID,
		Metadata:     metadata,
	}

	hash, err := ev.calculateHash()
	if err != nil {
		return Event{}, coreerr.Validation("compute event hash: %v", err)
	}
	ev.CurrentHash = hash

	if err := s.store.Save(ctx, s.table, ev.ID, ev.toDocument()); err != nil {
		return Event{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetTail(ctx, ev.CurrentHash, ev.Seq); err != nil {
			return Event{}, coreerr.StorageTransient(err, "update audit tail cache")
		}
	}

	return ev, nil
}

func (s *Service) GetEventByID(ctx context.Context, id string) (*Event, error) {
	doc, ok, err := s.store.Load(ctx, s.table, id)
	if err != nil || !ok {
		return nil, err
	}
	ev := eventFromDocument(doc)
	return &ev, nil
}

func (s *Service) GetEventsForEntity(ctx context.Context, entityType, entityID string, limit int) ([]Event, error) {
	docs, err := s.store.Find(ctx, s.table, storage.Document{"entity_type": entityType, "entity_id": entityID})
	if err != nil {
		return nil, err
	}
	events := documentsToSortedEvents(docs)
	return tailLimit(events, limit), nil
}

func (s *Service) GetEventsByType(ctx context.Context, eventType EventType, start, end *time.Time, limit int) ([]Event, error) {
	events, err := s.loadSorted(ctx)
	if err != nil {
		return nil, err
	}
	filtered := events[:0:0]
	for _, e := range events {
		if e.Type != eventType {
			continue
		}
		if !inRange(e.CreatedAt, start, end) {
			continue
		}
		filtered = append(filtered, e)
	}
	return tailLimit(filtered, limit), nil
}

func (s *Service) GetAllEvents(ctx context.Context, start, end *time.Time, limit int) ([]Event, error) {
	events, err := s.loadSorted(ctx)
	if err != nil {
		return nil, err
	}
	filtered := events[:0:0]
	for _, e := range events {
		if !inRange(e.CreatedAt, start, end) {
			continue
		}
		filtered = append(filtered, e)
	}
	return tailLimit(filtered, limit), nil
}

func (s *Service) CountEvents(ctx context.Context) (int, error) {
	return s.store.Count(ctx, s.table)
}

func (s *Service) GetLatestHash(ctx context.Context) (string, error) {
	hash, _, err := s.tail(ctx)
	return hash, err
}

func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

func documentsToSortedEvents(docs []storage.Document) []Event {
	events := make([]Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, eventFromDocument(doc))
	}
	sortEvents(events)
	return events
}

// tailLimit returns the most recent n events (the tail of a time-sorted
// slice), mirroring the original "most recent N" semantics.
func tailLimit(events []Event, limit int) []Event {
	if limit <= 0 || limit >= len(events) {
		return events
	}
	return events[len(events)-limit:]
}
