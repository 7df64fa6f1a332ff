package httpx

import (
	"context"
	"net/http"

	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

// ProductStore is the persistence surface the PMS handlers need.
type ProductStore interface {
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, opts model.ProductsListOptions) ([]*model.Product, error)
	Update(ctx context.Context, id string, req model.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ProductHandlers serves /api/v1/pms/products.
type ProductHandlers struct {
	Store ProductStore
}

// List handles GET /api/v1/pms/products. The sku query param short
// circuits to an exact lookup.
func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	if sku := r.URL.Query().Get("sku"); sku != "" {
		product, err := h.Store.GetBySKU(r.Context(), sku)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"products": []*model.Product{product}})
		return
	}

	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.ProductsListOptions{
		Limit:    limit,
		Offset:   offset,
		Q:        optQuery(r, "q"),
		Category: optQuery(r, "category"),
		Active:   optBoolQuery(r, "active"),
	}

	products, err := h.Store.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Get handles GET /api/v1/pms/products/{id}.
func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// Create handles POST /api/v1/pms/products.
func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.Store.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, product)
}

// Update handles PATCH /api/v1/pms/products/{id}.
func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.Store.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/pms/products/{id}.
func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if !deleted {
		WriteAppError(w, apperrors.NotFound("product not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
