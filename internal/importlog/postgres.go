package importlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"aims/pkg/requestcontext"
)

// Schema creates the import log table. Applied on startup and by the
// integration suites; idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS import_logs (
	id              UUID PRIMARY KEY,
	activity_id     UUID NOT NULL,
	iati_identifier TEXT NOT NULL,
	request_id      TEXT NOT NULL DEFAULT '',
	actor           TEXT NOT NULL DEFAULT '',
	written         JSONB NOT NULL DEFAULT '[]',
	skipped_count   INT NOT NULL DEFAULT 0,
	failed_count    INT NOT NULL DEFAULT 0,
	created         INT NOT NULL DEFAULT 0,
	updated         INT NOT NULL DEFAULT 0,
	deduplicated    INT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS import_logs_activity_idx ON import_logs (activity_id, created_at DESC);
`

// Postgres persists import run records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply import log schema: %w", err)
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, record *Record) error {
	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = requestcontext.Now(ctx)
	}
	written := record.Written
	if written == nil {
		written = []string{}
	}
	writtenJSON, err := json.Marshal(written)
	if err != nil {
		return fmt.Errorf("encode written fields: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO import_logs
			(id, activity_id, iati_identifier, request_id, actor, written,
			 skipped_count, failed_count, created, updated, deduplicated, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, record.ActivityID, record.IATIIdentifier, record.RequestID, record.Actor,
		writtenJSON, record.SkippedCount, record.FailedCount,
		record.Created, record.Updated, record.Deduplicated, createdAt)
	if err != nil {
		return fmt.Errorf("append import log: %w", err)
	}
	return nil
}

func (p *Postgres) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*Record, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, activity_id, iati_identifier, request_id, actor, written,
			skipped_count, failed_count, created, updated, deduplicated, created_at
		 FROM import_logs WHERE activity_id = $1 ORDER BY created_at DESC`, activityID)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		var written []byte
		if err := rows.Scan(&r.ID, &r.ActivityID, &r.IATIIdentifier, &r.RequestID, &r.Actor,
			&written, &r.SkippedCount, &r.FailedCount, &r.Created, &r.Updated,
			&r.Deduplicated, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import log: %w", err)
		}
		if err := json.Unmarshal(written, &r.Written); err != nil {
			return nil, fmt.Errorf("decode written fields: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	return out, nil
}
