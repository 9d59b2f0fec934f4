package kafka

import (
	"context"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
	pkgkafka "github.com/adhikag24/unified-pricing-layer-mvp/pkg/kafka"
)

// Publisher re-emits raw events onto a fixed topic. DLQ replay uses it
// so replayed events travel the same path as live ones.
type Publisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher builds a Publisher bound to topic.
func NewPublisher(cfg pkgkafka.Config, topic string) (*Publisher, error) {
	producer, err := pkgkafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer, topic: topic}, nil
}

func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{Key: key, Value: value})
}

// Close closes the underlying writers.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
