package producer

import (
	"context"
	"time"

	"github.com/Ali-shok/employee-management/internal/messaging/kafka"

	"go.uber.org/zap"
)

const defaultBatchSize = 50

// Relay moves pending outbox rows to Kafka. It is driven by the worker's
// scheduler; a run never overlaps with itself.
type Relay struct {
	repo      kafka.OutboxRepository
	writer    MessageWriter
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, batchSize int, logger ...*zap.Logger) *Relay {
	l := zap.L().Named("kafka.producer.relay")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer.relay")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Relay{repo: repo, writer: writer, batchSize: batchSize, now: time.Now, logger: l}
}

// RelayPending publishes one batch. Publish failures are recorded on the row
// and do not fail the run; only a failed listing does.
func (r *Relay) RelayPending(ctx context.Context) error {
	events, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("list pending outbox events failed", zap.Error(err))
		return err
	}

	if len(events) == 0 {
		return nil
	}

	r.logger.Info("processing pending outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := publishEvent(ctx, r.writer, event); err != nil {
			r.logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := r.repo.MarkFailed(ctx, event.ID, event.RetryCount, err.Error()); markErr != nil {
				r.logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			r.logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		r.logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return nil
}

// PurgeSent deletes sent rows processed before now-retention.
func (r *Relay) PurgeSent(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return nil
	}
	n, err := r.repo.PurgeSent(ctx, r.now().Add(-retention))
	if err != nil {
		r.logger.Error("purge sent outbox events failed", zap.Error(err))
		return err
	}
	if n > 0 {
		r.logger.Info("purged sent outbox events", zap.Int64("count", n))
	}
	return nil
}
