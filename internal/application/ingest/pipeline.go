// Package ingest is the write path of the read layer: it decodes
// envelopes, assigns versions under per-scope locks, appends facts, and
// parks anything it cannot commit in the DLQ. The pipeline never drops
// an event silently and never blocks the bus on a poison message.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
)

// Disposition is the terminal outcome of one ingest call.
type Disposition string

const (
	DispositionCommitted    Disposition = "committed"
	DispositionSkipped      Disposition = "skipped_duplicate"
	DispositionDeadLettered Disposition = "dead_lettered"
)

// Result reports what happened to one event. DeadLettered results carry
// the DLQ id and the error detail; Committed results carry the assigned
// version and any non-fatal warnings.
type Result struct {
	Disposition Disposition `json:"disposition"`
	EventID     string      `json:"event_id,omitempty"`
	EventType   string      `json:"event_type,omitempty"`
	OrderID     string      `json:"order_id,omitempty"`
	Version     int         `json:"version,omitempty"`
	DLQID       string      `json:"dlq_id,omitempty"`
	ErrorKind   string      `json:"error_kind,omitempty"`
	ErrorDetail string      `json:"error_detail,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Config tunes the pipeline. Zero values take the defaults below.
type Config struct {
	// EventTimeout bounds the handling of a single event end to end.
	EventTimeout time.Duration
	// MaxRetries is the number of commit retries on retryable faults
	// before the event is parked.
	MaxRetries uint64
}

const (
	defaultEventTimeout = 30 * time.Second
	defaultMaxRetries   = 3
)

// Pipeline is the single writer of the fact store.
type Pipeline struct {
	store    port.FactStore
	registry *VersionRegistry
	locks    *scopeLocks
	logger   *slog.Logger
	metrics  *Metrics
	cfg      Config
	now      func() time.Time
}

// NewPipeline wires the pipeline over a fact store. metrics may be nil.
func NewPipeline(store port.FactStore, logger *slog.Logger, metrics *Metrics, cfg Config) *Pipeline {
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = defaultEventTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Pipeline{
		store:    store,
		registry: NewVersionRegistry(store, logger),
		locks:    newScopeLocks(),
		logger:   logger,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Ingest processes one raw event to a terminal disposition. The returned
// error is non-nil only when the event could not even be parked in the
// DLQ; callers on the bus path should treat that as "do not commit the
// offset".
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) (Result, error) {
	start := p.now()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.EventTimeout)
	defer cancel()

	env, err := schema.DecodeEnvelope(raw)
	if err != nil {
		return p.deadLetter(ctx, env, raw, err, start)
	}

	kind, err := env.Kind()
	if err != nil {
		return p.deadLetter(ctx, env, raw, err, start)
	}
	if err := env.CheckSchemaKind(kind); err != nil {
		return p.deadLetter(ctx, env, raw, err, start)
	}

	var res Result
	switch kind {
	case schema.KindPricingUpdated:
		res, err = p.ingestPricing(ctx, env, false)
	case schema.KindRefundIssued:
		res, err = p.ingestPricing(ctx, env, true)
	case schema.KindPaymentLifecycle:
		res, err = p.ingestPayment(ctx, env)
	case schema.KindSupplierLifecycle:
		res, err = p.ingestSupplier(ctx, env)
	case schema.KindRefundLifecycle:
		res, err = p.ingestRefundLifecycle(ctx, env)
	case schema.KindPartnerAdjustment:
		res, err = p.ingestAdjustment(ctx, env)
	}
	if err != nil {
		return p.deadLetter(ctx, env, raw, err, start)
	}

	res.EventID = env.EventID
	res.EventType = env.EventType
	res.OrderID = env.OrderID
	p.metrics.observeEvent(ctx, env.EventType, string(res.Disposition), p.now().Sub(start))

	logAttrs := []any{
		"event_type", env.EventType,
		"order_id", env.OrderID,
		"event_id", env.EventID,
		"disposition", string(res.Disposition),
		"version", res.Version,
	}
	if len(res.Warnings) > 0 {
		logAttrs = append(logAttrs, "warnings", res.Warnings)
	}
	p.logger.Info("event ingested", logAttrs...)
	return res, nil
}

// deadLetter parks the raw event with its classified failure. DLQ writes
// themselves retry; if the park still fails the error escapes to the
// caller so the bus adapter can hold the offset.
func (p *Pipeline) deadLetter(ctx context.Context, env schema.Envelope, raw []byte, cause error, start time.Time) (Result, error) {
	kind := fault.KindOf(cause)
	entry := model.DLQEntry{
		DLQID:       uuid.NewString(),
		EventID:     env.EventID,
		EventType:   env.EventType,
		OrderID:     env.OrderID,
		RawEvent:    append([]byte(nil), raw...),
		ErrorKind:   kind,
		ErrorDetail: cause.Error(),
		ReceivedAt:  p.now().UTC(),
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.DLQ().Append(ctx, entry)
	}); err != nil {
		p.logger.Error("dead-letter write failed",
			"event_type", env.EventType,
			"order_id", env.OrderID,
			"cause", cause.Error(),
			"error", err.Error(),
		)
		return Result{}, err
	}

	p.metrics.observeEvent(ctx, env.EventType, string(DispositionDeadLettered), p.now().Sub(start))
	p.metrics.observeDLQ(ctx, string(kind))
	p.logger.Warn("event dead-lettered",
		"event_type", env.EventType,
		"order_id", env.OrderID,
		"event_id", env.EventID,
		"dlq_id", entry.DLQID,
		"error_kind", string(kind),
		"error", cause.Error(),
	)

	return Result{
		Disposition: DispositionDeadLettered,
		EventID:     env.EventID,
		EventType:   env.EventType,
		OrderID:     env.OrderID,
		DLQID:       entry.DLQID,
		ErrorKind:   string(kind),
		ErrorDetail: cause.Error(),
	}, nil
}

// withRetry runs op under the backoff policy, retrying only faults the
// taxonomy marks retryable. Deterministic failures return immediately.
func (p *Pipeline) withRetry(ctx context.Context, eventType string, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.cfg.MaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !fault.Retryable(err) {
			return backoff.Permanent(err)
		}
		p.metrics.observeRetry(ctx, eventType)
		p.logger.Warn("retrying commit", "event_type", eventType, "error", err.Error())
		return err
	}, policy)
}

// eventIDOrNew returns the envelope event id, minting one when the
// producer omitted it so primary keys stay non-empty.
func eventIDOrNew(env schema.Envelope) string {
	if env.EventID != "" {
		return env.EventID
	}
	return uuid.NewString()
}
