package model

import (
	"errors"
	"strings"
	"time"
)

// StockMovementKind describes the direction of a stock movement.
type StockMovementKind string

const (
	StockMovementInbound    StockMovementKind = "inbound"
	StockMovementOutbound   StockMovementKind = "outbound"
	StockMovementAdjustment StockMovementKind = "adjustment"
)

// Valid reports whether the movement kind is supported.
func (k StockMovementKind) Valid() bool {
	switch k {
	case StockMovementInbound, StockMovementOutbound, StockMovementAdjustment:
		return true
	default:
		return false
	}
}

// StockMovement is an append-only stock ledger entry for a product.
type StockMovement struct {
	ID         string            `json:"id"                  db:"id"`
	ProductID  string            `json:"product_id"          db:"product_id"`
	Kind       StockMovementKind `json:"kind"                db:"kind"`
	Quantity   int               `json:"quantity"            db:"quantity"`
	Reference  *string           `json:"reference,omitempty" db:"reference"`
	RecordedBy string            `json:"recorded_by"         db:"recorded_by"`
	OccurredAt time.Time         `json:"occurred_at"         db:"occurred_at"`
	CreatedAt  time.Time         `json:"created_at"          db:"created_at"`
}

// StockLevel is the aggregated on-hand quantity for a product.
type StockLevel struct {
	ProductID string `json:"product_id" db:"product_id"`
	OnHand    int    `json:"on_hand"    db:"on_hand"`
}

// StockMovementsListOptions controls paging and filtering for the ledger.
type StockMovementsListOptions struct {
	Limit     int
	Offset    int
	ProductID *string // exact match
	Kind      *string // exact match
}

// CreateStockMovementRequest represents parameters to record a movement.
type CreateStockMovementRequest struct {
	ProductID  string            `json:"product_id"`
	Kind       StockMovementKind `json:"kind"`
	Quantity   int               `json:"quantity"`
	Reference  *string           `json:"reference,omitempty"`
	OccurredAt *time.Time        `json:"occurred_at,omitempty"`
}

// Validate validates CreateStockMovementRequest.
func (r *CreateStockMovementRequest) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return errors.New("product_id is required")
	}
	r.Kind = StockMovementKind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	if !r.Kind.Valid() {
		return errors.New("invalid kind")
	}
	if r.Quantity == 0 {
		return errors.New("quantity cannot be zero")
	}
	if r.Kind == StockMovementOutbound && r.Quantity > 0 {
		r.Quantity = -r.Quantity
	}
	if r.Kind == StockMovementInbound && r.Quantity < 0 {
		return errors.New("inbound quantity must be positive")
	}
	return nil
}
