// Package models holds the persisted shapes of the activity domain: the
// records the import pipeline reads, compares against, and writes back.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity is the persisted aid activity header row.
type Activity struct {
	ID             uuid.UUID `json:"id"`
	IATIIdentifier string    `json:"iati_identifier"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Organization is a known publishing or participating body. Ref is the IATI
// organisation identifier and is unique across the table.
type Organization struct {
	ID   uuid.UUID `json:"id"`
	Ref  string    `json:"ref"`
	Name string    `json:"name"`
	Type string    `json:"type"`
}

// CollectionItem is one persisted row of a collection-valued field. NaturalKey
// identifies the row within its collection independently of storage order so
// imports stay idempotent; Payload is the canonical JSON of the sub-entity.
type CollectionItem struct {
	ID         uuid.UUID       `json:"id"`
	NaturalKey string          `json:"natural_key"`
	Payload    json.RawMessage `json:"payload"`
}

// Snapshot is everything currently stored for one activity, keyed by
// importable field id. Scalars map field ids to their canonical string value;
// an absent key means the field has never been written. Collections map field
// ids to their stored rows in insertion order.
type Snapshot struct {
	Activity    Activity
	Scalars     map[string]string
	Collections map[string][]CollectionItem
}

// Scalar returns the stored value for a scalar field and whether it exists.
func (s *Snapshot) Scalar(fieldID string) (string, bool) {
	v, ok := s.Scalars[fieldID]
	return v, ok
}

// Clone returns a deep copy so callers can mutate freely.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Activity:    s.Activity,
		Scalars:     make(map[string]string, len(s.Scalars)),
		Collections: make(map[string][]CollectionItem, len(s.Collections)),
	}
	for k, v := range s.Scalars {
		out.Scalars[k] = v
	}
	for k, items := range s.Collections {
		copied := make([]CollectionItem, len(items))
		for i, item := range items {
			copied[i] = item
			copied[i].Payload = append(json.RawMessage(nil), item.Payload...)
		}
		out.Collections[k] = copied
	}
	return out
}
