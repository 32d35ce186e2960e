package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/viralforge/event-portal/internal/ports"
)

// OutboxWorker drains the transactional outbox into the broker. Registration
// writes and their events commit in one transaction; delivery happens here,
// after the fact, so a broker outage never blocks a sign-up or a role change.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
}

// NewOutboxWorker constructs the drain loop. Zero or negative tuning values
// fall back to defaults that keep a single worker comfortably ahead of the
// portal's registration write rate.
func NewOutboxWorker(
	logger *slog.Logger,
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	interval time.Duration,
	batchSize int,
	claimTTL time.Duration,
	maxRetries int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if claimTTL <= 0 {
		claimTTL = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		claimTTL:   claimTTL,
		maxRetries: maxRetries,
	}
}

// Run drains the outbox on a fixed tick until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processOnce claims one batch under a fresh token and walks it. Every mark
// call carries the claim token so a worker whose claim expired mid-batch
// cannot overwrite a record a newer claimant already owns.
func (w *OutboxWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.batchSize, claimToken, time.Now().UTC().Add(w.claimTTL))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var published, deadLettered int
	for _, rec := range records {
		switch w.publishRecord(ctx, rec, claimToken, now) {
		case outboxPublished:
			published++
		case outboxDeadLettered:
			deadLettered++
		}
	}
	if len(records) > 0 {
		w.logger.InfoContext(ctx, "outbox batch drained",
			"batch_size", len(records),
			"published", published,
			"dead_lettered", deadLettered,
		)
	}
	return nil
}

type outboxOutcome int

const (
	outboxPublished outboxOutcome = iota
	outboxRetryScheduled
	outboxDeadLettered
)

func (w *OutboxWorker) publishRecord(ctx context.Context, rec ports.OutboxRecord, claimToken string, now time.Time) outboxOutcome {
	if rec.RetryCount >= w.maxRetries {
		_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "retry threshold reached before publish", now)
		return outboxDeadLettered
	}

	err := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey)
	if err == nil {
		_ = w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now)
		return outboxPublished
	}

	retries := rec.RetryCount + 1
	if retries >= w.maxRetries {
		w.logger.ErrorContext(ctx, "outbox record dead-lettered",
			"outbox_id", rec.OutboxID,
			"event_type", rec.EventType,
			"retry_count", retries,
			"error", err,
		)
		_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now)
		return outboxDeadLettered
	}

	w.logger.WarnContext(ctx, "outbox publish failed, retry scheduled",
		"outbox_id", rec.OutboxID,
		"event_type", rec.EventType,
		"retry_count", retries,
		"error", err,
	)
	_ = w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now)
	return outboxRetryScheduled
}
