//go:build integration

package importlog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aims/internal/importlog"
	"aims/pkg/testutil/containers"
)

type PostgresLogSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *importlog.Postgres
}

func TestPostgresLogSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLogSuite))
}

func (s *PostgresLogSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = importlog.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresLogSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "import_logs"))
}

// TestAppendAndList verifies persistence and newest-first ordering.
func (s *PostgresLogSuite) TestAppendAndList() {
	ctx := context.Background()
	activityID := uuid.New()

	older := &importlog.Record{
		ActivityID:     activityID,
		IATIIdentifier: "XM-DAC-IT-1",
		Written:        []string{"title", "sectors"},
		Created:        2,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	newer := &importlog.Record{
		ActivityID:     activityID,
		IATIIdentifier: "XM-DAC-IT-1",
		Written:        []string{"activity_status"},
		Updated:        1,
		Deduplicated:   1,
	}
	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	s.Run("lists newest first with decoded fields", func() {
		records, err := s.store.ListByActivity(ctx, activityID)
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal([]string{"activity_status"}, records[0].Written)
		s.Equal(1, records[0].Deduplicated)
		s.Equal([]string{"title", "sectors"}, records[1].Written)
		s.NotEqual(uuid.Nil, records[0].ID)
	})

	s.Run("history is isolated per activity", func() {
		records, err := s.store.ListByActivity(ctx, uuid.New())
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("a record with no written fields round-trips", func() {
		s.Require().NoError(s.store.Append(ctx, &importlog.Record{
			ActivityID:     activityID,
			IATIIdentifier: "XM-DAC-IT-1",
			SkippedCount:   3,
		}))
		records, err := s.store.ListByActivity(ctx, activityID)
		s.Require().NoError(err)
		s.Require().Len(records, 3)
		s.Empty(records[0].Written)
		s.Equal(3, records[0].SkippedCount)
	})
}
