package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxProductNameLen = 255

// Product is a catalog entry managed through the product section.
type Product struct {
	ID        string    `json:"id"                 db:"id"`
	SKU       string    `json:"sku"                db:"sku"`
	Name      string    `json:"name"               db:"name"`
	Category  *string   `json:"category,omitempty" db:"category"`
	UnitPrice float64   `json:"unit_price"         db:"unit_price"`
	Currency  string    `json:"currency"           db:"currency"`
	Active    bool      `json:"active"             db:"active"`
	CreatedAt time.Time `json:"created_at"         db:"created_at"`
	UpdatedAt time.Time `json:"updated_at"         db:"updated_at"`
}

// ProductsListOptions controls paging and filtering for listing products.
type ProductsListOptions struct {
	Limit    int
	Offset   int
	Q        *string // substring match on name or SKU (ILIKE)
	Category *string // exact match
	Active   *bool   // exact match
}

// CreateProductRequest represents parameters to create a Product.
type CreateProductRequest struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Category  *string `json:"category,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// UpdateProductRequest represents parameters to update a Product.
type UpdateProductRequest struct {
	Name      *string  `json:"name,omitempty"`
	Category  *string  `json:"category,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Currency  *string  `json:"currency,omitempty"`
	Active    *bool    `json:"active,omitempty"`
}

// Validate validates CreateProductRequest.
func (r *CreateProductRequest) Validate() error {
	sku := strings.TrimSpace(r.SKU)
	if sku == "" {
		return errors.New("sku is required and cannot be empty")
	}
	r.SKU = sku
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxProductNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Name = name
	if r.UnitPrice < 0 {
		return errors.New("unit_price cannot be negative")
	}
	if strings.TrimSpace(r.Currency) == "" {
		r.Currency = "USD"
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateProductRequest.
func (r *UpdateProductRequest) HasUpdates() bool {
	return r.Name != nil || r.Category != nil || r.UnitPrice != nil || r.Currency != nil || r.Active != nil
}

// Validate validates UpdateProductRequest, ensuring at least one field is set.
func (r *UpdateProductRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxProductNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
		*r.Name = n
	}
	if r.UnitPrice != nil && *r.UnitPrice < 0 {
		return errors.New("unit_price cannot be negative")
	}
	if r.Currency != nil && strings.TrimSpace(*r.Currency) == "" {
		return errors.New("currency cannot be empty")
	}
	return nil
}
