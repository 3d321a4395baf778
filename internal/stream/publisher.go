package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/igaming-news-radar/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher fans snapshot items out to a Kafka topic.
type Publisher struct {
	w       MessageWriter
	timeout time.Duration
	now     func() time.Time
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(w, timeout)
}

// NewPublisher wraps an existing writer.
func NewPublisher(w MessageWriter, timeout time.Duration) *Publisher {
	return &Publisher{w: w, timeout: timeout, now: time.Now}
}

// Publish writes every item of snap as one message keyed by its link and
// returns the number of messages written.
func (p *Publisher) Publish(ctx context.Context, runID string, snap models.Snapshot) (int, error) {
	items := NewItemMessages(runID, snap, p.now())
	if len(items) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(items))
	for _, item := range items {
		value, err := json.Marshal(item)
		if err != nil {
			return 0, fmt.Errorf("marshal item: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(item.Link),
			Value: value,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(runID)},
				{Key: "category", Value: []byte(item.Category)},
			},
		})
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	return len(msgs), nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
