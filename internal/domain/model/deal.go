package model

import (
	"errors"
	"strings"
	"time"
)

// DealStage tracks where a deal sits in the sales pipeline.
type DealStage string

const (
	DealStageLead        DealStage = "lead"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageWon         DealStage = "won"
	DealStageLost        DealStage = "lost"
)

// Valid reports whether the deal stage is supported.
func (s DealStage) Valid() bool {
	switch s {
	case DealStageLead, DealStageQualified, DealStageProposal,
		DealStageNegotiation, DealStageWon, DealStageLost:
		return true
	default:
		return false
	}
}

func normalizeDealStage(v DealStage) DealStage {
	normalized := DealStage(strings.ToLower(strings.TrimSpace(string(v))))
	if normalized == "" {
		return DealStageLead
	}
	return normalized
}

// Deal is a sales pipeline opportunity tied to a customer.
type Deal struct {
	ID            string     `json:"id"                       db:"id"`
	CustomerID    string     `json:"customer_id"              db:"customer_id"`
	ProductID     *string    `json:"product_id,omitempty"     db:"product_id"`
	Stage         DealStage  `json:"stage"                    db:"stage"`
	Amount        float64    `json:"amount"                   db:"amount"`
	Currency      string     `json:"currency"                 db:"currency"`
	OwnerEmail    string     `json:"owner_email"              db:"owner_email"`
	ExpectedClose *time.Time `json:"expected_close,omitempty" db:"expected_close"`
	CreatedAt     time.Time  `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"               db:"updated_at"`
}

// DealsListOptions controls paging and filtering for listing deals.
type DealsListOptions struct {
	Limit      int
	Offset     int
	CustomerID *string // exact match
	Stage      *string // exact match
	Owner      *string // exact match on owner_email
}

// CreateDealRequest represents parameters to create a Deal.
type CreateDealRequest struct {
	CustomerID    string     `json:"customer_id"`
	ProductID     *string    `json:"product_id,omitempty"`
	Stage         DealStage  `json:"stage,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency,omitempty"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
}

// UpdateDealRequest represents parameters to update a Deal.
type UpdateDealRequest struct {
	ProductID     *string    `json:"product_id,omitempty"`
	Stage         *DealStage `json:"stage,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
}

// Validate validates CreateDealRequest.
func (r *CreateDealRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("customer_id is required")
	}
	if r.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	r.Stage = normalizeDealStage(r.Stage)
	if !r.Stage.Valid() {
		return errors.New("invalid stage")
	}
	if strings.TrimSpace(r.Currency) == "" {
		r.Currency = "USD"
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateDealRequest.
func (r *UpdateDealRequest) HasUpdates() bool {
	return r.ProductID != nil || r.Stage != nil || r.Amount != nil || r.Currency != nil || r.ExpectedClose != nil
}

// Validate validates UpdateDealRequest, ensuring at least one field is set.
func (r *UpdateDealRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Amount != nil && *r.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	if r.Stage != nil {
		stage := normalizeDealStage(*r.Stage)
		if !stage.Valid() {
			return errors.New("invalid stage")
		}
		*r.Stage = stage
	}
	if r.Currency != nil && strings.TrimSpace(*r.Currency) == "" {
		return errors.New("currency cannot be empty")
	}
	return nil
}
