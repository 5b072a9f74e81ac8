package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/blackbeesoft/erp/internal/domain"
)

// productRepositoryPG — реализация domain.ProductRepository поверх PostgreSQL.
type productRepositoryPG struct {
	db *sql.DB
}

// NewProductRepository создаёт репозиторий товаров поверх PostgreSQL.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryPG{db: store.DB()}
}

func (r *productRepositoryPG) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, price_minor, stock_quantity)
		 VALUES ($1, $2, $3, $4)`,
		product.ID, product.Name, product.PriceMinor, product.StockQuantity)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s already exists: %w", product.ID, err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepositoryPG) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getContext(ctx, id)
}

func (r *productRepositoryPG) getContext(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_minor, stock_quantity FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.PriceMinor, &p.StockQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *productRepositoryPG) List() ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.listWhere(ctx, `SELECT id, name, price_minor, stock_quantity FROM products ORDER BY name, id`)
}

func (r *productRepositoryPG) Save(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $2, price_minor = $3, stock_quantity = $4 WHERE id = $1`,
		product.ID, product.Name, product.PriceMinor, product.StockQuantity)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepositoryPG) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// AdjustStock меняет остаток одним условным UPDATE: проверка достаточности
// и списание выполняются в базе атомарно, без окна между чтением и записью.
func (r *productRepositoryPG) AdjustStock(id string, delta int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2
		 WHERE id = $1 AND stock_quantity + $2 >= 0`,
		id, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust stock rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// UPDATE никого не задел: либо товара нет, либо остатка не хватает.
	p, err := r.getContext(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return &domain.ProductNotFoundError{ProductID: id}
		}
		return err
	}
	return &domain.InsufficientStockError{
		ProductID: id,
		Available: p.StockQuantity,
		Requested: -delta,
	}
}

func (r *productRepositoryPG) ListLowStock(threshold int32) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.listWhere(ctx,
		`SELECT id, name, price_minor, stock_quantity FROM products
		 WHERE stock_quantity < $1 ORDER BY stock_quantity, name`, threshold)
}

func (r *productRepositoryPG) listWhere(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceMinor, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// isUniqueViolation распознаёт нарушение уникального ограничения PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ domain.ProductRepository = (*productRepositoryPG)(nil)
