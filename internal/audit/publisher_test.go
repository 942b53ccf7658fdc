package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aims/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	store     *MemoryStore
	publisher *Publisher
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.publisher = NewPublisher(s.store)
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

// TestEmit verifies request-scoped fields are filled from the context.
func (s *PublisherSuite) TestEmit() {
	s.Run("fills timestamp, request id and actor from context", func() {
		now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), now)
		ctx = requestcontext.WithRequestID(ctx, "req-42")
		ctx = requestcontext.WithUserID(ctx, "reviewer@example.org")

		s.Require().NoError(s.publisher.Emit(ctx, Event{
			Action:     ActionPreviewed,
			ActivityID: "a-1",
		}))

		events := s.store.Events()
		s.Require().Len(events, 1)
		s.Equal(now, events[0].Timestamp)
		s.Equal("req-42", events[0].RequestID)
		s.Equal("reviewer@example.org", events[0].Actor)
	})

	s.Run("events routed through an inbox reach the store", func() {
		store := NewMemoryStore()
		inbox := make(chan Event, 4)
		worker := NewWorker(store, inbox)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- worker.Run(ctx) }()

		publisher := NewPublisher(NewInboxStore(inbox))
		s.Require().NoError(publisher.Emit(context.Background(), Event{
			Action:     ActionMerged,
			ActivityID: "a-2",
		}))

		s.Require().Eventually(func() bool {
			return len(store.Events()) == 1
		}, time.Second, 10*time.Millisecond)
		s.Equal("a-2", store.Events()[0].ActivityID)

		cancel()
		s.Require().ErrorIs(<-done, context.Canceled)
	})

	s.Run("explicit event fields are not overwritten", func() {
		stamped := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithUserID(context.Background(), "someone-else")

		s.Require().NoError(s.publisher.Emit(ctx, Event{
			Timestamp: stamped,
			Actor:     "original-actor",
			Action:    ActionMerged,
		}))

		events := s.store.Events()
		last := events[len(events)-1]
		s.Equal(stamped, last.Timestamp)
		s.Equal("original-actor", last.Actor)
	})
}
