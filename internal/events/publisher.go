package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

// MediaPublishedEvent is emitted after a successful publish so
// downstream services (feeds, notifications) can react.
type MediaPublishedEvent struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Publisher{writer: w}
}

// PublishMediaPublished is nil-safe so wiring kafka stays optional.
func (p *Publisher) PublishMediaPublished(ctx context.Context, m *models.Media) error {
	if p == nil || p.writer == nil {
		return nil
	}
	ev := MediaPublishedEvent{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Tags:        m.Tags,
		PublishedAt: m.CreatedAt,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(m.ID), Value: b, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
