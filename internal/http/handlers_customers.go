package httpx

import (
	"context"
	"net/http"

	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CustomerStore is the persistence surface the CRM handlers need.
type CustomerStore interface {
	Create(ctx context.Context, createdBy string, req *model.CreateCustomerRequest) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, opts model.CustomersListOptions) ([]*model.Customer, error)
	Update(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CustomerHandlers serves /api/v1/crm/customers.
type CustomerHandlers struct {
	Store CustomerStore
}

// List handles GET /api/v1/crm/customers.
func (h *CustomerHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.CustomersListOptions{
		Limit:  limit,
		Offset: offset,
		Q:      optQuery(r, "q"),
		Status: optQuery(r, "status"),
	}

	customers, err := h.Store.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// Get handles GET /api/v1/crm/customers/{id}.
func (h *CustomerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

// Create handles POST /api/v1/crm/customers. The creating employee is
// taken from the request principal, never from the payload.
func (h *CustomerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Credential(nil))
		return
	}

	var req model.CreateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Store.Create(r.Context(), p.Employee.Email, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, customer)
}

// Update handles PATCH /api/v1/crm/customers/{id}.
func (h *CustomerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Store.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/v1/crm/customers/{id}.
func (h *CustomerHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if !deleted {
		WriteAppError(w, apperrors.NotFound("customer not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
