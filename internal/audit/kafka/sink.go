// Package kafka mirrors audit entries to a Kafka topic. The mirror is
// strictly best-effort: the Postgres trail is the source of truth and a
// broker outage must never slow down or fail a mutation.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"opsledger/internal/audit"
)

// Sink publishes audit entries to a topic via franz-go.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// message is the wire shape of a mirrored entry.
type message struct {
	ID              string         `json:"id"`
	Action          string         `json:"action"`
	RecordType      string         `json:"record_type"`
	RecordID        string         `json:"record_id"`
	WorkerID        string         `json:"worker_id,omitempty"`
	PerformedBy     string         `json:"performed_by"`
	PerformedByRole string         `json:"performed_by_role"`
	PreviousValue   map[string]any `json:"previous_value,omitempty"`
	NewValue        map[string]any `json:"new_value,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

// NewSink connects to the brokers and ensures the topic exists. Returns an
// error only for connection-level failures; a topic that already exists is
// fine.
func NewSink(brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		if !strings.Contains(err.Error(), "TOPIC_ALREADY_EXISTS") {
			client.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
		}
	}

	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// Publish produces the entry asynchronously; the callback only logs, so a
// broker problem shows up in logs and metrics, never in the caller's path.
func (s *Sink) Publish(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(message{
		ID:              entry.ID.String(),
		Action:          string(entry.Action),
		RecordType:      string(entry.RecordType),
		RecordID:        entry.RecordID,
		WorkerID:        entry.WorkerID,
		PerformedBy:     entry.PerformedBy,
		PerformedByRole: string(entry.PerformedByRole),
		PreviousValue:   entry.PreviousValue,
		NewValue:        entry.NewValue,
		Reason:          entry.Reason,
		CreatedAt:       entry.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(entry.RecordID),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("audit mirror produce failed",
				"error", err,
				"topic", s.topic,
				"action", string(entry.Action),
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
