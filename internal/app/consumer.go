package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Ali-shok/employee-management/internal/bootstrap"
	"github.com/Ali-shok/employee-management/internal/config"
	"github.com/Ali-shok/employee-management/internal/employee"
	"github.com/Ali-shok/employee-management/internal/events"
	"github.com/Ali-shok/employee-management/internal/messaging/kafka/consumer"
	"github.com/Ali-shok/employee-management/internal/notification"
	"github.com/Ali-shok/employee-management/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer turns leave lifecycle events into employee notifications.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	employeeRepo := employee.NewRepository(gormDB)
	notifier := notification.NewNotifier(
		employeeRepo,
		notification.NewAuditSender(bootstrap.NewStdoutAuditLogger(logger)),
		logger,
	)

	reader := connection.NewKafkaReader(cfg.Kafka.Brokers, events.LeaveLifecycleTopic, cfg.Kafka.ConsumerGroup)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeLeaveLifecycle(ctx, reader, notifier, logger)
	}()

	<-ctx.Done()
	logger.Info("consumer shutting down")
	<-done

	return nil
}
