package importlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MemoryLogSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryLogSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryLogSuite(t *testing.T) {
	suite.Run(t, new(MemoryLogSuite))
}

// TestAppendAndList verifies per-activity history.
func (s *MemoryLogSuite) TestAppendAndList() {
	activityID := uuid.New()

	s.Run("append fills id and timestamp", func() {
		record := &Record{ActivityID: activityID, Written: []string{"title"}}
		s.Require().NoError(s.store.Append(s.ctx, record))

		records, err := s.store.ListByActivity(s.ctx, activityID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.NotEqual(uuid.Nil, records[0].ID)
		s.False(records[0].CreatedAt.IsZero())
		s.Equal([]string{"title"}, records[0].Written)
	})

	s.Run("records accumulate in append order", func() {
		s.Require().NoError(s.store.Append(s.ctx, &Record{ActivityID: activityID, Written: []string{"sectors"}}))
		records, err := s.store.ListByActivity(s.ctx, activityID)
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal([]string{"sectors"}, records[1].Written)
	})

	s.Run("history is isolated per activity", func() {
		records, err := s.store.ListByActivity(s.ctx, uuid.New())
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("listed records are copies", func() {
		records, err := s.store.ListByActivity(s.ctx, activityID)
		s.Require().NoError(err)
		records[0].Written[0] = "mutated"

		fresh, err := s.store.ListByActivity(s.ctx, activityID)
		s.Require().NoError(err)
		s.Equal("title", fresh[0].Written[0])
	})
}
