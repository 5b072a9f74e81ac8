package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/storage/memory"
	"github.com/blackbeesoft/erp/internal/storage/postgres"
)

// Dependencies содержит хранилища и инфраструктурные зависимости приложения.
type Dependencies struct {
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Orders    domain.OrderRepository
	History   domain.HistoryRepository
	Outbox    domain.OutboxRepository

	// Store не nil только для PostgreSQL backend.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies выбирает backend по конфигурации: PostgreSQL при наличии
// DSN, иначе in-memory хранилище.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory storage")
		return &Dependencies{
			Customers: memory.NewCustomerRepository(),
			Products:  memory.NewProductRepository(),
			Orders:    memory.NewOrderRepository(),
			History:   memory.NewHistoryRepository(),
			Outbox:    memory.NewOutboxRepository(),
			Logger:    logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("using postgres storage")

	return &Dependencies{
		Customers: postgres.NewCustomerRepository(store),
		Products:  postgres.NewProductRepository(store),
		Orders:    postgres.NewOrderRepository(store),
		History:   postgres.NewHistoryRepository(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Store:     store,
		Logger:    logger,
	}, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.WithError(err).Warn("failed to close postgres store")
	}
}
