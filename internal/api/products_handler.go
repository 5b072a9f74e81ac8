package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
)

// DefaultLowStockThreshold — порог остатка для сводки "мало на складе".
const DefaultLowStockThreshold = domain.LowStockThreshold

// ProductsHandler обслуживает REST-операции над товарами.
type ProductsHandler struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewProductsHandler создаёт handler товаров.
func NewProductsHandler(products domain.ProductRepository) *ProductsHandler {
	return &ProductsHandler{
		products: products,
		logger:   log.WithField("component", "products-handler"),
	}
}

// Register навешивает маршруты товаров на router.
func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/low-stock", h.listLowStock)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, _ *http.Request) {
	products, err := h.products.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

func (h *ProductsHandler) listLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := int32(DefaultLowStockThreshold)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "threshold must be a non-negative integer")
			return
		}
		threshold = int32(parsed)
	}

	products, err := h.products.ListLowStock(threshold)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(product))
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var dto productDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	product := domain.Product{
		ID:            uuid.NewString(),
		Name:          dto.Name,
		PriceMinor:    dto.PriceMinor,
		StockQuantity: dto.StockQuantity,
	}
	if errs := product.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errs[0].Error()})
		return
	}
	if err := h.products.Create(product); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(product))
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var dto productDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	product := domain.Product{
		ID:            chi.URLParam(r, "id"),
		Name:          dto.Name,
		PriceMinor:    dto.PriceMinor,
		StockQuantity: dto.StockQuantity,
	}
	if errs := product.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errs[0].Error()})
		return
	}
	if err := h.products.Save(product); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(product))
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toProductDTOs(products []domain.Product) []productDTO {
	dtos := make([]productDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	return dtos
}
