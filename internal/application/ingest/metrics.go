package ingest

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics instruments the pipeline. A nil *Metrics is a valid no-op, so
// unit tests and tools can run without a meter provider.
type Metrics struct {
	eventsTotal    metric.Int64Counter
	dlqTotal       metric.Int64Counter
	ingestDuration metric.Float64Histogram
	retriesTotal   metric.Int64Counter
}

// NewMetrics registers the pipeline instruments on the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eventsTotal, err := meter.Int64Counter("uprl_events_total",
		metric.WithDescription("Ingested events by type and disposition"))
	if err != nil {
		return nil, err
	}
	dlqTotal, err := meter.Int64Counter("uprl_dlq_total",
		metric.WithDescription("Dead-lettered events by error kind"))
	if err != nil {
		return nil, err
	}
	ingestDuration, err := meter.Float64Histogram("uprl_ingest_duration_seconds",
		metric.WithDescription("End-to-end ingest latency per event"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	retriesTotal, err := meter.Int64Counter("uprl_ingest_retries_total",
		metric.WithDescription("Commit retries by event type"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		eventsTotal:    eventsTotal,
		dlqTotal:       dlqTotal,
		ingestDuration: ingestDuration,
		retriesTotal:   retriesTotal,
	}, nil
}

func (m *Metrics) observeEvent(ctx context.Context, eventType, disposition string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("disposition", disposition),
	)
	m.eventsTotal.Add(ctx, 1, attrs)
	m.ingestDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (m *Metrics) observeDLQ(ctx context.Context, errorKind string) {
	if m == nil {
		return
	}
	m.dlqTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("error_kind", errorKind)))
}

func (m *Metrics) observeRetry(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
