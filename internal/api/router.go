package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/health"
	"github.com/blackbeesoft/erp/internal/service/orders"
)

// RouterDeps перечисляет зависимости HTTP-границы.
type RouterDeps struct {
	Orders    *orders.Service
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Invoice   domain.InvoiceRenderer
	Health    *health.Handler
}

// NewRouter собирает chi router со всеми маршрутами сервиса.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	if deps.Health != nil {
		r.Method("GET", "/healthz", deps.Health)
		r.Get("/livez", health.LivenessHandler)
		r.Get("/readyz", deps.Health.ReadinessHandler)
	}

	NewOrdersHandler(deps.Orders, deps.Invoice).Register(r)
	NewCustomersHandler(deps.Customers).Register(r)
	NewProductsHandler(deps.Products).Register(r)

	return r
}
