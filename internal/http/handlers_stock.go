package httpx

import (
	"context"
	"net/http"

	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

// StockStore is the persistence surface the stock handlers need.
// Movements are append-only; levels are derived, never stored.
type StockStore interface {
	Record(ctx context.Context, recordedBy string, req *model.CreateStockMovementRequest) (*model.StockMovement, error)
	List(ctx context.Context, opts model.StockMovementsListOptions) ([]*model.StockMovement, error)
	Level(ctx context.Context, productID string) (*model.StockLevel, error)
	Levels(ctx context.Context) ([]*model.StockLevel, error)
}

// StockHandlers serves /api/v1/stock.
type StockHandlers struct {
	Store StockStore
}

// ListMovements handles GET /api/v1/stock/movements.
func (h *StockHandlers) ListMovements(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.StockMovementsListOptions{
		Limit:     limit,
		Offset:    offset,
		ProductID: optQuery(r, "product_id"),
		Kind:      optQuery(r, "kind"),
	}

	movements, err := h.Store.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"movements": movements})
}

// RecordMovement handles POST /api/v1/stock/movements.
func (h *StockHandlers) RecordMovement(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Credential(nil))
		return
	}

	var req model.CreateStockMovementRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	movement, err := h.Store.Record(r.Context(), p.Employee.Email, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, movement)
}

// Levels handles GET /api/v1/stock/levels.
func (h *StockHandlers) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Store.Levels(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"levels": levels})
}

// Level handles GET /api/v1/stock/levels/{productID}.
func (h *StockHandlers) Level(w http.ResponseWriter, r *http.Request) {
	level, err := h.Store.Level(r.Context(), r.PathValue("productID"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, level)
}
