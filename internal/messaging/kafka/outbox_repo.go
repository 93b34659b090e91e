package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

const (
	maxErrorMessageLen = 500
	retryBackoffStep   = 15 * time.Second
	maxBackoffSteps    = 10
)

type OutboxEvent struct {
	ID            string    `db:"id"`
	RequestID     string    `db:"request_id"`
	AggregateType string    `db:"aggregate_type"`
	AggregateID   string    `db:"aggregate_id"`
	EventType     string    `db:"event_type"`
	Topic         string    `db:"topic"`
	Payload       []byte    `db:"payload"`
	Status        string    `db:"status"`
	RetryCount    int       `db:"retry_count"`
	NextRetryAt   time.Time `db:"next_retry_at"`
	CreatedAt     time.Time `db:"created_at"`
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryCount int, reason string) error
	PurgeSent(ctx context.Context, olderThan time.Time) (int64, error)
}

// outboxRepository keeps its SQL portable between PostgreSQL and MySQL:
// placeholders go through Rebind and timestamps are computed here.
type outboxRepository struct {
	db  *sqlx.DB
	tx  *sql.Tx
	now func() time.Time
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepository {
	return &outboxRepository{db: db, now: time.Now}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx, now: r.now}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	now := r.now().UTC()
	query := r.db.Rebind(`
INSERT INTO outbox_events (
	id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status,
	retry_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
`)

	_, err := r.execer().ExecContext(
		ctx, query,
		event.ID, event.RequestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, event.Status,
		now, now,
	)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	query := r.db.Rebind(`
SELECT
	id,
	request_id,
	aggregate_type,
	aggregate_id,
	event_type,
	topic,
	payload,
	status,
	retry_count,
	COALESCE(next_retry_at, created_at) AS next_retry_at,
	created_at
FROM outbox_events
WHERE status IN (?, ?)
	AND (next_retry_at IS NULL OR next_retry_at <= ?)
ORDER BY created_at ASC
LIMIT ?
`)

	events := make([]OutboxEvent, 0, limit)
	err := r.db.SelectContext(ctx, &events, query,
		OutboxStatusPending, OutboxStatusFailed, r.now().UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	now := r.now().UTC()
	query := r.db.Rebind(`
UPDATE outbox_events
SET
	status = ?,
	processed_at = ?,
	error_message = NULL,
	updated_at = ?
WHERE id = ?
`)
	_, err := r.execer().ExecContext(ctx, query, OutboxStatusSent, now, now, id)
	return err
}

// MarkFailed schedules the next attempt with a linear backoff capped at
// maxBackoffSteps steps. retryCount is the count before this failure.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, retryCount int, reason string) error {
	now := r.now().UTC()
	query := r.db.Rebind(`
UPDATE outbox_events
SET
	status = ?,
	retry_count = retry_count + 1,
	error_message = ?,
	next_retry_at = ?,
	updated_at = ?
WHERE id = ?
`)
	_, err := r.execer().ExecContext(ctx, query,
		OutboxStatusFailed, truncate(reason, maxErrorMessageLen), NextRetryAt(now, retryCount), now, id,
	)
	return err
}

func (r *outboxRepository) PurgeSent(ctx context.Context, olderThan time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM outbox_events WHERE status = ? AND processed_at < ?`)
	res, err := r.execer().ExecContext(ctx, query, OutboxStatusSent, olderThan.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// NextRetryAt returns when an event that has already failed retryCount times
// becomes eligible again.
func NextRetryAt(now time.Time, retryCount int) time.Time {
	steps := retryCount + 1
	if steps > maxBackoffSteps {
		steps = maxBackoffSteps
	}
	return now.Add(time.Duration(steps) * retryBackoffStep)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
