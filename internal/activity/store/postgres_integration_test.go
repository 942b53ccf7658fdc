//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aims/internal/activity/models"
	"aims/internal/activity/store"
	"aims/pkg/platform/sentinel"
	"aims/pkg/testutil/containers"
)

type PostgresGatewaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresGatewaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresGatewaySuite))
}

func (s *PostgresGatewaySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresGatewaySuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "activity_items", "activity_scalars", "activities", "organizations")
	s.Require().NoError(err)
}

func (s *PostgresGatewaySuite) createActivity(iatiID string) uuid.UUID {
	a := &models.Activity{ID: uuid.New(), IATIIdentifier: iatiID}
	s.Require().NoError(s.store.CreateActivity(context.Background(), a))
	return a.ID
}

// TestCreateAndSnapshot verifies round trips through the real schema.
func (s *PostgresGatewaySuite) TestCreateAndSnapshot() {
	ctx := context.Background()

	s.Run("creates and reads back an empty snapshot", func() {
		id := s.createActivity("XM-DAC-IT-1")
		snap, err := s.store.ReadSnapshot(ctx, id)
		s.Require().NoError(err)
		s.Equal("XM-DAC-IT-1", snap.Activity.IATIIdentifier)
		s.Empty(snap.Scalars)
		s.Empty(snap.Collections)
	})

	s.Run("duplicate identifier maps the unique violation to ErrConflict", func() {
		s.createActivity("XM-DAC-IT-2")
		err := s.store.CreateActivity(ctx, &models.Activity{ID: uuid.New(), IATIIdentifier: "XM-DAC-IT-2"})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown activity is not found", func() {
		_, err := s.store.ReadSnapshot(ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestScalarUpserts verifies insert-then-overwrite semantics.
func (s *PostgresGatewaySuite) TestScalarUpserts() {
	ctx := context.Background()
	id := s.createActivity("XM-DAC-IT-3")

	s.Require().NoError(s.store.UpsertScalar(ctx, id, "activity_status", "2"))
	s.Require().NoError(s.store.UpsertScalar(ctx, id, "activity_status", "4"))
	s.Require().NoError(s.store.UpsertScalar(ctx, id, "title", `[{"text":"T"}]`))

	snap, err := s.store.ReadSnapshot(ctx, id)
	s.Require().NoError(err)
	v, ok := snap.Scalar("activity_status")
	s.True(ok)
	s.Equal("4", v)
	s.Len(snap.Scalars, 2)

	s.Run("upsert against an unknown activity is not found", func() {
		s.Require().ErrorIs(s.store.UpsertScalar(ctx, uuid.New(), "title", "x"), sentinel.ErrNotFound)
	})
}

// TestReplaceCollection verifies atomic wholesale replacement with ordering.
func (s *PostgresGatewaySuite) TestReplaceCollection() {
	ctx := context.Background()
	id := s.createActivity("XM-DAC-IT-4")

	items := []models.CollectionItem{
		{NaturalKey: "1|14010", Payload: json.RawMessage(`{"code":"14010","vocabulary":"1"}`)},
		{NaturalKey: "1|14020", Payload: json.RawMessage(`{"code":"14020","vocabulary":"1"}`)},
	}
	s.Require().NoError(s.store.ReplaceCollection(ctx, id, "sectors", items))

	s.Run("rows come back in insertion order", func() {
		snap, err := s.store.ReadSnapshot(ctx, id)
		s.Require().NoError(err)
		stored := snap.Collections["sectors"]
		s.Require().Len(stored, 2)
		s.Equal("1|14010", stored[0].NaturalKey)
		s.Equal("1|14020", stored[1].NaturalKey)
		s.JSONEq(`{"code":"14010","vocabulary":"1"}`, string(stored[0].Payload))
	})

	s.Run("a replace swaps the whole collection", func() {
		s.Require().NoError(s.store.ReplaceCollection(ctx, id, "sectors", items[1:]))
		snap, err := s.store.ReadSnapshot(ctx, id)
		s.Require().NoError(err)
		s.Require().Len(snap.Collections["sectors"], 1)
		s.Equal("1|14020", snap.Collections["sectors"][0].NaturalKey)
	})

	s.Run("collections of different fields do not interfere", func() {
		docs := []models.CollectionItem{{NaturalKey: "https://example.org/a.pdf", Payload: json.RawMessage(`{"url":"https://example.org/a.pdf"}`)}}
		s.Require().NoError(s.store.ReplaceCollection(ctx, id, "documents", docs))
		snap, err := s.store.ReadSnapshot(ctx, id)
		s.Require().NoError(err)
		s.Len(snap.Collections["sectors"], 1)
		s.Len(snap.Collections["documents"], 1)
	})

	s.Run("replace against an unknown activity is not found", func() {
		s.Require().ErrorIs(s.store.ReplaceCollection(ctx, uuid.New(), "sectors", items), sentinel.ErrNotFound)
	})
}

// TestOrganizations verifies the ref-unique organisation table.
func (s *PostgresGatewaySuite) TestOrganizations() {
	ctx := context.Background()

	org := &models.Organization{ID: uuid.New(), Ref: "XM-DAC-41114", Name: "Funder", Type: "multilateral"}
	s.Require().NoError(s.store.SaveOrganization(ctx, org))

	s.Run("finds by ref", func() {
		found, err := s.store.FindOrganizationByRef(ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("Funder", found.Name)
	})

	s.Run("saving the same ref updates in place", func() {
		s.Require().NoError(s.store.SaveOrganization(ctx, &models.Organization{
			ID: uuid.New(), Ref: "XM-DAC-41114", Name: "Funder (renamed)", Type: "multilateral",
		}))
		found, err := s.store.FindOrganizationByRef(ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("Funder (renamed)", found.Name)
	})

	s.Run("unknown ref is not found", func() {
		_, err := s.store.FindOrganizationByRef(ctx, "XX-NONE")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestFindActivityByIATIID verifies the identifier lookup used by
// related-activity resolution.
func (s *PostgresGatewaySuite) TestFindActivityByIATIID() {
	ctx := context.Background()
	id := s.createActivity("XM-DAC-IT-5")

	found, err := s.store.FindActivityByIATIID(ctx, "XM-DAC-IT-5")
	s.Require().NoError(err)
	s.Equal(id, found.ID)

	_, err = s.store.FindActivityByIATIID(ctx, "XM-DAC-IT-MISSING")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
