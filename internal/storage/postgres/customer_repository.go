package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

const opTimeout = 5 * time.Second

// customerRepositoryPG — реализация domain.CustomerRepository поверх PostgreSQL.
type customerRepositoryPG struct {
	db *sql.DB
}

// NewCustomerRepository создаёт репозиторий клиентов поверх PostgreSQL.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepositoryPG{db: store.DB()}
}

func (r *customerRepositoryPG) Create(customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, phone, address)
		 VALUES ($1, $2, $3, $4, $5)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer %s already exists: %w", customer.ID, err)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepositoryPG) Get(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var c domain.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

func (r *customerRepositoryPG) List() ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, address FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepositoryPG) Save(customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = $2, email = $3, phone = $4, address = $5 WHERE id = $1`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepositoryPG) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

var _ domain.CustomerRepository = (*customerRepositoryPG)(nil)
