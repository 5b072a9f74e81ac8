package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
	"github.com/blackbeesoft/erp/internal/service/orders"
)

// OrdersHandler обслуживает REST-операции над заказами.
type OrdersHandler struct {
	service *orders.Service
	invoice domain.InvoiceRenderer
	logger  *log.Entry
}

// NewOrdersHandler создаёт handler заказов.
func NewOrdersHandler(service *orders.Service, invoice domain.InvoiceRenderer) *OrdersHandler {
	return &OrdersHandler{
		service: service,
		invoice: invoice,
		logger:  log.WithField("component", "orders-handler"),
	}
}

// Register навешивает маршруты заказов на router.
func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/recent", h.listRecent)
		r.Get("/sales", h.totalSales)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Get("/{id}/invoice", h.downloadInvoice)
		r.Get("/{id}/history", h.history)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(result))
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	order, err := h.service.Create(r.Context(), req.toDomain(""))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), req.toDomain(id)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := orders.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	result, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(result))
}

func (h *OrdersHandler) totalSales(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	total, err := h.service.TotalSales(r.Context(), from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_minor": total})
}

func (h *OrdersHandler) downloadInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	pdf, err := h.invoice.RenderInvoice(order)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *OrdersHandler) history(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	events, err := h.service.History(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	dtos := make([]historyEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, historyEventDTO{
			OrderID:  event.OrderID,
			Type:     event.Type,
			Detail:   event.Detail,
			Occurred: event.Occurred,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// parseTimeParam читает опциональный RFC3339 или YYYY-MM-DD параметр.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD", name)
}
