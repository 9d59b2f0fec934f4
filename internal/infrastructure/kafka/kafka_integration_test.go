//go:build integration

package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/ingest"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/memory"
	pkgkafka "github.com/adhikag24/unified-pricing-layer-mvp/pkg/kafka"
	"github.com/adhikag24/unified-pricing-layer-mvp/pkg/testutil"
)

// Publishes one pricing event onto a real broker and waits for the
// consumer to land it in the fact store.
func TestConsumerDrainsTopicIntoPipeline(t *testing.T) {
	ctx := context.Background()
	kc := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { kc.Cleanup(t) })

	const topic = "order-events"
	kc.CreateTopic(t, topic)

	cfg := pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: "uprl-test"}
	logger := slog.New(slog.DiscardHandler)

	store := memory.NewStore()
	pipeline := ingest.NewPipeline(store, logger, nil, ingest.Config{})

	publisher, err := NewPublisher(cfg, topic)
	require.NoError(t, err)
	t.Cleanup(func() { publisher.Close() })

	event := []byte(`{
		"event_id": "evt-bus-1",
		"event_type": "PricingUpdated",
		"schema_version": "pricing.commerce.v1",
		"order_id": "ord-bus-1",
		"emitted_at": "2026-03-01T10:00:00Z",
		"components": [
			{"component_type": "RoomRate", "amount": 500000, "currency": "IDR",
			 "dimensions": {"order_detail_id": "od-1"}}
		]
	}`)
	require.NoError(t, publisher.Publish(ctx, []byte("ord-bus-1"), event))

	consumer, err := NewConsumer(cfg, topic, pipeline, logger)
	require.NoError(t, err)
	t.Cleanup(func() { consumer.Close() })

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- consumer.Start(runCtx) }()

	deadline := time.Now().Add(60 * time.Second)
	for {
		seen, err := store.Pricing().HasEvent(ctx, "ord-bus-1", "evt-bus-1")
		require.NoError(t, err)
		if seen {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event never reached the fact store")
		}
		time.Sleep(200 * time.Millisecond)
	}

	rows, err := store.Pricing().ListByOrder(ctx, "ord-bus-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(500000), rows[0].Amount)

	cancel()
	require.NoError(t, <-done)
}
