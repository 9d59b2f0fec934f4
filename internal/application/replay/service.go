// Package replay serves the dead-letter queue: listing parked events and
// pushing them back onto the bus.
package replay

import (
	"context"
	"log/slog"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/dto"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
)

// Service lists and replays dead-lettered events.
type Service struct {
	store     port.FactStore
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewService wires the DLQ service. publisher may be nil when the
// service runs without a bus; Replay then fails with the publisher
// error.
func NewService(store port.FactStore, publisher port.EventPublisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// List returns parked events, newest first, honoring the filter.
func (s *Service) List(ctx context.Context, filter model.DLQFilter) ([]dto.DLQEntryView, error) {
	entries, err := s.store.DLQ().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]dto.DLQEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.DLQEntryFromModel(e))
	}
	return views, nil
}

// Replay re-publishes the parked raw event onto the bus so it travels
// the normal ingestion path, then bumps its retry counter. The DLQ row
// itself is never deleted; the fact tables stay append-only and the
// pipeline's idempotency makes double replays harmless.
func (s *Service) Replay(ctx context.Context, dlqID string) (dto.DLQEntryView, error) {
	entry, err := s.store.DLQ().Get(ctx, dlqID)
	if err != nil {
		return dto.DLQEntryView{}, err
	}

	if err := s.publisher.Publish(ctx, []byte(entry.OrderID), entry.RawEvent); err != nil {
		return dto.DLQEntryView{}, err
	}
	if err := s.store.DLQ().MarkRetried(ctx, dlqID); err != nil {
		return dto.DLQEntryView{}, err
	}

	entry.RetryCount++
	s.logger.Info("dlq event replayed",
		"dlq_id", dlqID,
		"event_type", entry.EventType,
		"order_id", entry.OrderID,
		"retry_count", entry.RetryCount,
	)
	return dto.DLQEntryFromModel(entry), nil
}
