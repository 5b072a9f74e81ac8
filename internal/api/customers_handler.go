package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
)

// CustomersHandler обслуживает REST-операции над клиентами.
type CustomersHandler struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewCustomersHandler создаёт handler клиентов.
func NewCustomersHandler(customers domain.CustomerRepository) *CustomersHandler {
	return &CustomersHandler{
		customers: customers,
		logger:    log.WithField("component", "customers-handler"),
	}
}

// Register навешивает маршруты клиентов на router.
func (h *CustomersHandler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CustomersHandler) list(w http.ResponseWriter, _ *http.Request) {
	customers, err := h.customers.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dtos := make([]customerDTO, 0, len(customers))
	for _, c := range customers {
		dtos = append(dtos, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(customer))
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var dto customerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	customer := domain.Customer{
		ID:      uuid.NewString(),
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Address: dto.Address,
	}
	if errs := customer.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errs[0].Error()})
		return
	}
	if err := h.customers.Create(customer); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(customer))
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request) {
	var dto customerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	customer := domain.Customer{
		ID:      chi.URLParam(r, "id"),
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Address: dto.Address,
	}
	if errs := customer.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errs[0].Error()})
		return
	}
	if err := h.customers.Save(customer); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(customer))
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
