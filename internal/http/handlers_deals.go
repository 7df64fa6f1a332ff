package httpx

import (
	"context"
	"net/http"

	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

// DealStore is the persistence surface the pipeline handlers need.
type DealStore interface {
	Create(ctx context.Context, ownerEmail string, req *model.CreateDealRequest) (*model.Deal, error)
	GetByID(ctx context.Context, id string) (*model.Deal, error)
	List(ctx context.Context, opts model.DealsListOptions) ([]*model.Deal, error)
	Update(ctx context.Context, id string, req model.UpdateDealRequest) (*model.Deal, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DealHandlers serves /api/v1/pipeline/deals.
type DealHandlers struct {
	Store DealStore
}

// List handles GET /api/v1/pipeline/deals.
func (h *DealHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.DealsListOptions{
		Limit:      limit,
		Offset:     offset,
		CustomerID: optQuery(r, "customer_id"),
		Stage:      optQuery(r, "stage"),
		Owner:      optQuery(r, "owner"),
	}

	deals, err := h.Store.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deals": deals})
}

// Get handles GET /api/v1/pipeline/deals/{id}.
func (h *DealHandlers) Get(w http.ResponseWriter, r *http.Request) {
	deal, err := h.Store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, deal)
}

// Create handles POST /api/v1/pipeline/deals. The signed-in employee
// becomes the deal owner.
func (h *DealHandlers) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Credential(nil))
		return
	}

	var req model.CreateDealRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	deal, err := h.Store.Create(r.Context(), p.Employee.Email, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, deal)
}

// Update handles PATCH /api/v1/pipeline/deals/{id}.
func (h *DealHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateDealRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	deal, err := h.Store.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, deal)
}

// Delete handles DELETE /api/v1/pipeline/deals/{id}.
func (h *DealHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if !deleted {
		WriteAppError(w, apperrors.NotFound("deal not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
