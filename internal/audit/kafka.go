package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic is where import audit events are produced.
const DefaultTopic = "aims.import.audit"

// KafkaStore produces audit events to a Kafka topic. Writes are synchronous
// so a delivery failure surfaces to the emitter instead of vanishing.
type KafkaStore struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// KafkaOption configures a KafkaStore.
type KafkaOption func(*KafkaStore)

// WithTopic overrides the default topic.
func WithTopic(topic string) KafkaOption {
	return func(s *KafkaStore) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithLogger sets a logger for delivery errors.
func WithLogger(logger *slog.Logger) KafkaOption {
	return func(s *KafkaStore) {
		s.logger = logger
	}
}

// NewKafkaStore connects to the given brokers and ensures the topic exists.
func NewKafkaStore(ctx context.Context, brokers []string, opts ...KafkaOption) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	s := &KafkaStore{client: client, topic: DefaultTopic}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *KafkaStore) ensureTopic(ctx context.Context) error {
	admin := kadm.NewClient(s.client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic: %w", resp.Err)
	}
	return nil
}

// Append produces one event and waits for the broker acknowledgement.
func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ActivityID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "audit event delivery failed",
				"action", event.Action,
				"activity_id", event.ActivityID,
				"error", err,
			)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (s *KafkaStore) Close() {
	s.client.Close()
}
