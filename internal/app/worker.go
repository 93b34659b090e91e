package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Ali-shok/employee-management/internal/config"
	"github.com/Ali-shok/employee-management/internal/messaging/kafka"
	"github.com/Ali-shok/employee-management/internal/messaging/kafka/producer"
	"github.com/Ali-shok/employee-management/internal/scheduler"
	"github.com/Ali-shok/employee-management/internal/shared/connection"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// RunWorker relays pending outbox rows to Kafka and purges delivered ones on
// the configured schedules until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

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

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Brokers, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlx.NewDb(sqlDB, cfg.Database.SQLDriverName()))
	relay := producer.NewRelay(outboxRepo, kafkaWriter, cfg.Outbox.BatchSize, logger)

	jobs := scheduler.New(logger)
	if err := jobs.Register("outbox.relay", cfg.Outbox.PollSchedule, relay.RelayPending); err != nil {
		return err
	}
	err = jobs.Register("outbox.purge", cfg.Outbox.PurgeSchedule, func(ctx context.Context) error {
		return relay.PurgeSent(ctx, cfg.Outbox.Retention)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs.Start()
	logger.Info("worker started")
	<-ctx.Done()

	logger.Info("worker shutting down")
	jobs.Stop()

	return nil
}
