// Package kafka adapts the shared bus client to the ingestion pipeline:
// one consumer feeding events into the pipeline, and a publisher for DLQ
// replays.
package kafka

import (
	"context"
	"log/slog"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/ingest"
	pkgkafka "github.com/adhikag24/unified-pricing-layer-mvp/pkg/kafka"
)

// Consumer drains the order event topic into the pipeline.
type Consumer struct {
	inner *pkgkafka.Consumer
}

// NewConsumer builds the bus consumer for topic. Every message reaches a
// terminal disposition inside the pipeline; the handler only errors when
// an event could not even be dead-lettered, which holds the offset for
// redelivery.
func NewConsumer(cfg pkgkafka.Config, topic string, pipeline *ingest.Pipeline, logger *slog.Logger) (*Consumer, error) {
	handler := func(ctx context.Context, msg pkgkafka.Message) error {
		_, err := pipeline.Ingest(ctx, msg.Value)
		return err
	}

	inner, err := pkgkafka.NewConsumer(cfg, topic, handler, logger)
	if err != nil {
		return nil, err
	}
	return &Consumer{inner: inner}, nil
}

// Start consumes until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	return c.inner.Start(ctx)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.inner.Close()
}
