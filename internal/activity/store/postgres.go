package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"aims/internal/activity/models"
	"aims/pkg/platform/sentinel"
	"aims/pkg/requestcontext"
)

// Schema creates the activity domain tables. Applied on startup and by the
// integration suites; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS activities (
	id              UUID PRIMARY KEY,
	iati_identifier TEXT NOT NULL UNIQUE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_scalars (
	activity_id UUID NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	field       TEXT NOT NULL,
	value       TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (activity_id, field)
);

CREATE TABLE IF NOT EXISTS activity_items (
	id          UUID PRIMARY KEY,
	activity_id UUID NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	field       TEXT NOT NULL,
	position    INT NOT NULL,
	natural_key TEXT NOT NULL,
	payload     JSONB NOT NULL,
	UNIQUE (activity_id, field, natural_key)
);

CREATE TABLE IF NOT EXISTS organizations (
	id       UUID PRIMARY KEY,
	ref      TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	org_type TEXT NOT NULL
);
`

// Postgres persists the activity domain in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed gateway.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply activity schema: %w", err)
	}
	return nil
}

func (p *Postgres) ReadSnapshot(ctx context.Context, activityID uuid.UUID) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Scalars:     make(map[string]string),
		Collections: make(map[string][]models.CollectionItem),
	}
	row := p.db.QueryRowContext(ctx,
		`SELECT id, iati_identifier, created_at, updated_at FROM activities WHERE id = $1`, activityID)
	if err := row.Scan(&snap.Activity.ID, &snap.Activity.IATIIdentifier,
		&snap.Activity.CreatedAt, &snap.Activity.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read activity: %w", err)
	}

	scalars, err := p.db.QueryContext(ctx,
		`SELECT field, value FROM activity_scalars WHERE activity_id = $1`, activityID)
	if err != nil {
		return nil, fmt.Errorf("read activity scalars: %w", err)
	}
	defer scalars.Close()
	for scalars.Next() {
		var field, value string
		if err := scalars.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan activity scalar: %w", err)
		}
		snap.Scalars[field] = value
	}
	if err := scalars.Err(); err != nil {
		return nil, fmt.Errorf("read activity scalars: %w", err)
	}

	items, err := p.db.QueryContext(ctx,
		`SELECT id, field, natural_key, payload FROM activity_items
		 WHERE activity_id = $1 ORDER BY field, position`, activityID)
	if err != nil {
		return nil, fmt.Errorf("read activity items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var field string
		var item models.CollectionItem
		if err := items.Scan(&item.ID, &field, &item.NaturalKey, &item.Payload); err != nil {
			return nil, fmt.Errorf("scan activity item: %w", err)
		}
		snap.Collections[field] = append(snap.Collections[field], item)
	}
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("read activity items: %w", err)
	}
	return snap, nil
}

func (p *Postgres) CreateActivity(ctx context.Context, activity *models.Activity) error {
	now := requestcontext.Now(ctx)
	createdAt := activity.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO activities (id, iati_identifier, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		activity.ID, activity.IATIIdentifier, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (p *Postgres) UpsertScalar(ctx context.Context, activityID uuid.UUID, fieldID, value string) error {
	now := requestcontext.Now(ctx)
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO activity_scalars (activity_id, field, value, updated_at)
		 SELECT id, $2, $3, $4 FROM activities WHERE id = $1
		 ON CONFLICT (activity_id, field) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`,
		activityID, fieldID, value, now)
	if err != nil {
		return fmt.Errorf("upsert scalar %s: %w", fieldID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert scalar %s: %w", fieldID, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	_, err = p.db.ExecContext(ctx,
		`UPDATE activities SET updated_at = $2 WHERE id = $1`, activityID, now)
	if err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

func (p *Postgres) ReplaceCollection(ctx context.Context, activityID uuid.UUID, fieldID string, items []models.CollectionItem) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", fieldID, err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM activities WHERE id = $1)`, activityID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check activity: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM activity_items WHERE activity_id = $1 AND field = $2`,
		activityID, fieldID); err != nil {
		return fmt.Errorf("clear collection %s: %w", fieldID, err)
	}
	for i, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activity_items (id, activity_id, field, position, natural_key, payload)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, activityID, fieldID, i, item.NaturalKey, []byte(item.Payload)); err != nil {
			return fmt.Errorf("insert %s item %q: %w", fieldID, item.NaturalKey, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE activities SET updated_at = $2 WHERE id = $1`,
		activityID, requestcontext.Now(ctx)); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", fieldID, err)
	}
	return nil
}

func (p *Postgres) FindOrganizationByRef(ctx context.Context, ref string) (*models.Organization, error) {
	var org models.Organization
	err := p.db.QueryRowContext(ctx,
		`SELECT id, ref, name, org_type FROM organizations WHERE ref = $1`, ref).
		Scan(&org.ID, &org.Ref, &org.Name, &org.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization %q: %w", ref, err)
	}
	return &org, nil
}

func (p *Postgres) SaveOrganization(ctx context.Context, org *models.Organization) error {
	id := org.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO organizations (id, ref, name, org_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (ref) DO UPDATE SET
			name = EXCLUDED.name,
			org_type = EXCLUDED.org_type`,
		id, org.Ref, org.Name, org.Type)
	if err != nil {
		return fmt.Errorf("save organization %q: %w", org.Ref, err)
	}
	return nil
}

func (p *Postgres) FindActivityByIATIID(ctx context.Context, iatiID string) (*models.Activity, error) {
	var activity models.Activity
	err := p.db.QueryRowContext(ctx,
		`SELECT id, iati_identifier, created_at, updated_at FROM activities WHERE iati_identifier = $1`, iatiID).
		Scan(&activity.ID, &activity.IATIIdentifier, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find activity %q: %w", iatiID, err)
	}
	return &activity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
