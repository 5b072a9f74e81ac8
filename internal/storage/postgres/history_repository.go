package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blackbeesoft/erp/internal/domain"
)

// historyRepositoryPG хранит события жизненного цикла заказов в PostgreSQL.
type historyRepositoryPG struct {
	db *sql.DB
}

// NewHistoryRepository создаёт репозиторий истории заказов поверх PostgreSQL.
func NewHistoryRepository(store *Store) domain.HistoryRepository {
	return &historyRepositoryPG{db: store.DB()}
}

func (r *historyRepositoryPG) Append(event domain.HistoryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_history (order_id, event_type, detail, occurred_at)
		 VALUES ($1, $2, $3, $4)`,
		event.OrderID, event.Type, event.Detail, event.Occurred)
	if err != nil {
		return fmt.Errorf("insert history event: %w", err)
	}
	return nil
}

func (r *historyRepositoryPG) List(orderID string) ([]domain.HistoryEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, event_type, detail, occurred_at
		 FROM order_history WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select history events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.HistoryEvent
	for rows.Next() {
		var event domain.HistoryEvent
		if err := rows.Scan(&event.OrderID, &event.Type, &event.Detail, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		event.Occurred = event.Occurred.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}

var _ domain.HistoryRepository = (*historyRepositoryPG)(nil)
