package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

// orderRepositoryPG — реализация domain.OrderRepository поверх PostgreSQL.
// Шапка заказа и его позиции всегда пишутся в одной транзакции.
type orderRepositoryPG struct {
	db *sql.DB
}

// NewOrderRepository создаёт репозиторий заказов поверх PostgreSQL.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryPG{db: store.DB()}
}

func (r *orderRepositoryPG) Create(order domain.Order) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, order_date, status, amount_minor, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.CustomerID, order.OrderDate, string(order.Status),
		order.AmountMinor, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s already exists: %w", order.ID, err)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if err = insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *orderRepositoryPG) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, order_date, status, amount_minor, created_at, updated_at
		 FROM orders WHERE id = $1`, id).
		Scan(&order.ID, &order.CustomerID, &order.OrderDate, &status,
			&order.AmountMinor, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	normalizeOrderTimes(&order)

	order.Items, err = r.loadItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepositoryPG) List() ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, order_date, status, amount_minor, created_at, updated_at
		 FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items, err = r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepositoryPG) SaveHeader(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET customer_id = $2, order_date = $3, status = $4,
		        amount_minor = $5, updated_at = $6
		 WHERE id = $1`,
		order.ID, order.CustomerID, order.OrderDate, string(order.Status),
		order.AmountMinor, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order header: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order header rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ReplaceItems удаляет старые позиции до вставки новых в одной транзакции.
func (r *orderRepositoryPG) ReplaceItems(orderID string, items []domain.OrderItem) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace items tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return domain.ErrOrderNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err = insertItems(ctx, tx, orderID, items); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete удаляет позиции и шапку заказа явными запросами, не полагаясь
// на каскад в схеме. Отсутствие заказа не считается ошибкой.
func (r *orderRepositoryPG) Delete(id string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete order tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return tx.Commit()
}

func (r *orderRepositoryPG) ListRecent(limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, order_date, status, amount_minor, created_at, updated_at
		 FROM orders ORDER BY order_date DESC, created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Позиции намеренно не подгружаются: список для дашборда.
	return scanOrders(rows)
}

func (r *orderRepositoryPG) TotalSales(from, to *time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(`SELECT COALESCE(SUM(amount_minor), 0) FROM orders`)
	var (
		conds []string
		args  []any
	)
	if from != nil {
		args = append(args, from.UTC())
		conds = append(conds, "order_date >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, to.UTC())
		conds = append(conds, "order_date <= $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, sb.String(), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum order amounts: %w", err)
	}
	return total, nil
}

func (r *orderRepositoryPG) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price_minor
		 FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Qty, &item.UnitPriceMinor); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []domain.OrderItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price_minor)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, orderID, item.ProductID, i, item.Qty, item.UnitPriceMinor)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ID, err)
		}
	}
	return nil
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var status string
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.OrderDate, &status,
			&order.AmountMinor, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		normalizeOrderTimes(&order)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func normalizeOrderTimes(order *domain.Order) {
	order.OrderDate = order.OrderDate.UTC()
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
}

var _ domain.OrderRepository = (*orderRepositoryPG)(nil)
