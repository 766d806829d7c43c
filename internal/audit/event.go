package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/nexum-core/ledger/internal/storage"
)

// Event is one immutable, hash-chained audit record. Events are never
// updated or deleted once appended.
type Event struct {
	ID           string
	CreatedAt    time.Time
	Seq          int64 // monotonic tie-breaker for identical CreatedAt
	Type         EventType
	EntityType   string
	EntityID     string
	PreviousHash string
	CurrentHash  string
	UserID       string
	SessionID    string
	Metadata     map[string]any
}

// hashPreimage builds the canonical JSON used as the SHA-256 pre-image.
// encoding/json sorts map keys when marshaling, which is what gives us the
// lexicographically-sorted, separator-compact form the chain depends on.
func (e Event) hashPreimage() ([]byte, error) {
	fields := map[string]any{
		"id":            e.ID,
		"created_at":    e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"event_type":    string(e.Type),
		"entity_type":   e.EntityType,
		"entity_id":     e.EntityID,
		"previous_hash": e.PreviousHash,
		"user_id":       e.UserID,
		"session_id":    e.SessionID,
		"metadata":      e.Metadata,
	}
	return json.Marshal(fields)
}

// calculateHash computes the SHA-256 hex digest over the event's fields,
// excluding current_hash itself to avoid a circular reference.
func (e Event) calculateHash() (string, error) {
	pre, err := e.hashPreimage()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(pre)
	return hex.EncodeToString(sum[:]), nil
}

// verifyHash reports whether CurrentHash matches what calculateHash
// produces now.
func (e Event) verifyHash() (bool, error) {
	expected, err := e.calculateHash()
	if err != nil {
		return false, err
	}
	return e.CurrentHash == expected, nil
}

func (e Event) toDocument() storage.Document {
	return storage.Document{
		"id":            e.ID,
		"created_at":    e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"seq":           e.Seq,
		"event_type":    string(e.Type),
		"entity_type":   e.EntityType,
		"entity_id":     e.EntityID,
		"previous_hash": e.PreviousHash,
		"current_hash":  e.CurrentHash,
		"user_id":       e.UserID,
		"session_id":    e.SessionID,
		"metadata":      e.Metadata,
	}
}

func eventFromDocument(doc storage.Document) Event {
	e := Event{
		ID:           strField(doc, "id"),
		Type:         EventType(strField(doc, "event_type")),
		EntityType:   strField(doc, "entity_type"),
		EntityID:     strField(doc, "entity_id"),
		PreviousHash: strField(doc, "previous_hash"),
		CurrentHash:  strField(doc, "current_hash"),
		UserID:       strField(doc, "user_id"),
		SessionID:    strField(doc, "session_id"),
	}
	if m, ok := doc["metadata"].(map[string]any); ok {
		e.Metadata = m
	} else {
		e.Metadata = map[string]any{}
	}
	if t, err := time.Parse(time.RFC3339Nano, strField(doc, "created_at")); err == nil {
		e.CreatedAt = t
	}
	e.Seq = seqField(doc)
	return e
}

func strField(doc storage.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func seqField(doc storage.Document) int64 {
	switch v := doc["seq"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
