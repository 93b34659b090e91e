package consumer

import (
	"context"
	"encoding/json"

	"github.com/Ali-shok/employee-management/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type LeaveEventHandler interface {
	HandleLeaveEvent(ctx context.Context, event events.LeaveEvent) error
}

// ConsumeLeaveLifecycle blocks until ctx is cancelled. Undecodable messages are
// committed and skipped; handler failures leave the offset uncommitted.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	handler LeaveEventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.LeaveEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := handler.HandleLeaveEvent(ctx, event); err != nil {
			log.Error("handle leave event failed",
				zap.String("event_type", event.EventType),
				zap.Int64("leave_id", event.LeaveID),
				zap.Int64("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("leave event handled",
			zap.String("event_type", event.EventType),
			zap.Int64("leave_id", event.LeaveID),
			zap.String("request_id", event.RequestID),
		)
	}
}
