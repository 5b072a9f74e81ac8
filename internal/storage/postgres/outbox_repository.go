package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/blackbeesoft/erp/internal/domain"
)

// outboxRepositoryPG — transactional outbox поверх PostgreSQL.
type outboxRepositoryPG struct {
	db *sql.DB
}

// NewOutboxRepository создаёт outbox-репозиторий поверх PostgreSQL.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepositoryPG{db: store.DB()}
}

// Enqueue сохраняет событие со статусом `pending`.
func (r *outboxRepositoryPG) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return msg, nil
}

// PullPending возвращает до limit pending-сообщений в порядке постановки.
func (r *outboxRepositoryPG) PullPending(limit int) ([]domain.OutboxMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_type, aggregate_id, event_type, payload
		 FROM outbox_messages WHERE status = 'pending'
		 ORDER BY created_at, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending outbox messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Stats возвращает размер backlog и время самой старой pending-записи.
func (r *outboxRepositoryPG) Stats() (domain.OutboxStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_at) FROM outbox_messages WHERE status = 'pending'`).
		Scan(&stats.PendingCount, &oldest)
	if err != nil {
		return domain.OutboxStats{}, fmt.Errorf("read outbox stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}
	return stats, nil
}

// MarkSent помечает сообщение опубликованным.
func (r *outboxRepositoryPG) MarkSent(id string) error {
	return r.markStatus(id, "sent", "")
}

// MarkFailed фиксирует неудачную попытку публикации.
func (r *outboxRepositoryPG) MarkFailed(id string) error {
	return r.markStatus(id, "failed", "publish failed")
}

func (r *outboxRepositoryPG) markStatus(id, status, lastError string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_messages
		 SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = now()
		 WHERE id = $1`, id, status, lastError)
	if err != nil {
		return fmt.Errorf("update outbox message status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOutboxPublish
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepositoryPG)(nil)
