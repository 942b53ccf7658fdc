// Package store provides the persistence gateway for the activity domain.
// The import pipeline never touches storage directly; everything goes through
// the Gateway so the merge semantics stay identical across backends.
package store

import (
	"context"

	"github.com/google/uuid"

	"aims/internal/activity/models"
)

// Gateway is the persistence boundary of the import pipeline.
//
// Scalar writes are field-granular upserts. Collection writes replace the
// whole collection atomically; partial collection updates are not offered
// because review selections are made per field, not per row.
type Gateway interface {
	// ReadSnapshot loads everything stored for one activity. Returns
	// sentinel.ErrNotFound when the activity does not exist.
	ReadSnapshot(ctx context.Context, activityID uuid.UUID) (*models.Snapshot, error)

	// CreateActivity registers a new activity header. Returns
	// sentinel.ErrConflict when the IATI identifier is already taken.
	CreateActivity(ctx context.Context, activity *models.Activity) error

	// UpsertScalar writes one scalar field value, inserting or overwriting.
	UpsertScalar(ctx context.Context, activityID uuid.UUID, fieldID, value string) error

	// ReplaceCollection swaps the stored rows of one collection field for the
	// given items in a single atomic step.
	ReplaceCollection(ctx context.Context, activityID uuid.UUID, fieldID string, items []models.CollectionItem) error

	// FindOrganizationByRef resolves an IATI organisation identifier.
	// Returns sentinel.ErrNotFound when no organization carries the ref.
	FindOrganizationByRef(ctx context.Context, ref string) (*models.Organization, error)

	// SaveOrganization upserts an organization keyed by its ref.
	SaveOrganization(ctx context.Context, org *models.Organization) error

	// FindActivityByIATIID resolves an IATI activity identifier to its header.
	// Returns sentinel.ErrNotFound when unknown.
	FindActivityByIATIID(ctx context.Context, iatiID string) (*models.Activity, error)
}
