package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aims/internal/activity/models"
	"aims/pkg/platform/sentinel"
)

type MemoryGatewaySuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryGatewaySuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryGatewaySuite(t *testing.T) {
	suite.Run(t, new(MemoryGatewaySuite))
}

func (s *MemoryGatewaySuite) newActivity(iatiID string) *models.Activity {
	return &models.Activity{ID: uuid.New(), IATIIdentifier: iatiID}
}

// TestCreateAndSnapshot verifies creation, uniqueness and snapshot reads.
func (s *MemoryGatewaySuite) TestCreateAndSnapshot() {
	s.Run("creates an activity and reads an empty snapshot", func() {
		a := s.newActivity("XM-DAC-1-A")
		s.Require().NoError(s.store.CreateActivity(s.ctx, a))

		snap, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("XM-DAC-1-A", snap.Activity.IATIIdentifier)
		s.Empty(snap.Scalars)
		s.Empty(snap.Collections)
		s.False(snap.Activity.CreatedAt.IsZero())
	})

	s.Run("rejects a duplicate iati identifier", func() {
		a := s.newActivity("XM-DAC-1-B")
		s.Require().NoError(s.store.CreateActivity(s.ctx, a))
		dup := s.newActivity("XM-DAC-1-B")
		s.Require().ErrorIs(s.store.CreateActivity(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for an unknown activity", func() {
		_, err := s.store.ReadSnapshot(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestScalars verifies scalar upserts and their visibility in snapshots.
func (s *MemoryGatewaySuite) TestScalars() {
	a := s.newActivity("XM-DAC-2-A")
	s.Require().NoError(s.store.CreateActivity(s.ctx, a))

	s.Run("upsert inserts then overwrites", func() {
		s.Require().NoError(s.store.UpsertScalar(s.ctx, a.ID, "activity_status", "2"))
		s.Require().NoError(s.store.UpsertScalar(s.ctx, a.ID, "activity_status", "4"))

		snap, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		v, ok := snap.Scalar("activity_status")
		s.True(ok)
		s.Equal("4", v)
	})

	s.Run("upsert against an unknown activity fails", func() {
		s.Require().ErrorIs(s.store.UpsertScalar(s.ctx, uuid.New(), "title", "x"), sentinel.ErrNotFound)
	})
}

// TestCollections verifies wholesale replacement and read isolation.
func (s *MemoryGatewaySuite) TestCollections() {
	a := s.newActivity("XM-DAC-3-A")
	s.Require().NoError(s.store.CreateActivity(s.ctx, a))

	items := []models.CollectionItem{
		{NaturalKey: "1|14010", Payload: json.RawMessage(`{"code":"14010"}`)},
		{NaturalKey: "1|14020", Payload: json.RawMessage(`{"code":"14020"}`)},
	}

	s.Run("replace stores the rows and assigns ids", func() {
		s.Require().NoError(s.store.ReplaceCollection(s.ctx, a.ID, "sectors", items))
		snap, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		stored := snap.Collections["sectors"]
		s.Require().Len(stored, 2)
		s.NotEqual(uuid.Nil, stored[0].ID)
	})

	s.Run("replace swaps the whole collection", func() {
		s.Require().NoError(s.store.ReplaceCollection(s.ctx, a.ID, "sectors", items[:1]))
		snap, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Len(snap.Collections["sectors"], 1)
	})

	s.Run("snapshots are copies, not views", func() {
		snap, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		snap.Collections["sectors"][0].NaturalKey = "mutated"
		snap.Scalars["title"] = "mutated"

		fresh, err := s.store.ReadSnapshot(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("1|14010", fresh.Collections["sectors"][0].NaturalKey)
		_, ok := fresh.Scalar("title")
		s.False(ok)
	})

	s.Run("replace against an unknown activity fails", func() {
		s.Require().ErrorIs(s.store.ReplaceCollection(s.ctx, uuid.New(), "sectors", items), sentinel.ErrNotFound)
	})
}

// TestOrganizations verifies the ref index and upsert-by-ref behavior.
func (s *MemoryGatewaySuite) TestOrganizations() {
	s.Run("saves and finds by ref", func() {
		org := &models.Organization{Ref: "XM-DAC-41114", Name: "Funder", Type: "multilateral"}
		s.Require().NoError(s.store.SaveOrganization(s.ctx, org))

		found, err := s.store.FindOrganizationByRef(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("Funder", found.Name)
		s.NotEqual(uuid.Nil, found.ID)
	})

	s.Run("saving the same ref keeps the original id", func() {
		first, err := s.store.FindOrganizationByRef(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)

		s.Require().NoError(s.store.SaveOrganization(s.ctx, &models.Organization{
			Ref: "XM-DAC-41114", Name: "Funder (renamed)", Type: "multilateral",
		}))
		second, err := s.store.FindOrganizationByRef(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal(first.ID, second.ID)
		s.Equal("Funder (renamed)", second.Name)
	})

	s.Run("unknown ref is not found", func() {
		_, err := s.store.FindOrganizationByRef(s.ctx, "XX-NONE")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestFindActivityByIATIID verifies the identifier index.
func (s *MemoryGatewaySuite) TestFindActivityByIATIID() {
	a := s.newActivity("XM-DAC-4-A")
	s.Require().NoError(s.store.CreateActivity(s.ctx, a))

	s.Run("finds by identifier", func() {
		found, err := s.store.FindActivityByIATIID(s.ctx, "XM-DAC-4-A")
		s.Require().NoError(err)
		s.Equal(a.ID, found.ID)
	})

	s.Run("unknown identifier is not found", func() {
		_, err := s.store.FindActivityByIATIID(s.ctx, "XM-DAC-4-Z")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
