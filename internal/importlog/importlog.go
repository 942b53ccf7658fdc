// Package importlog keeps a durable history of import runs per activity, so
// reviewers can see when a document was merged, by whom, and what it touched.
package importlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one completed pipeline run against one activity.
type Record struct {
	ID             uuid.UUID `json:"id"`
	ActivityID     uuid.UUID `json:"activity_id"`
	IATIIdentifier string    `json:"iati_identifier"`
	RequestID      string    `json:"request_id,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	Written        []string  `json:"written,omitempty"`
	SkippedCount   int       `json:"skipped_count"`
	FailedCount    int       `json:"failed_count"`
	Created        int       `json:"created"`
	Updated        int       `json:"updated"`
	Deduplicated   int       `json:"deduplicated"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists import run records.
type Store interface {
	Append(ctx context.Context, record *Record) error
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*Record, error)
}
