package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCustomerNameLen = 255

// CustomerStatus tracks where a customer sits in the relationship.
type CustomerStatus string

const (
	CustomerStatusProspect CustomerStatus = "prospect"
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusDormant  CustomerStatus = "dormant"
)

// Valid reports whether the customer status is supported.
func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerStatusProspect, CustomerStatusActive, CustomerStatusDormant:
		return true
	default:
		return false
	}
}

func normalizeCustomerStatus(v CustomerStatus) CustomerStatus {
	normalized := CustomerStatus(strings.ToLower(strings.TrimSpace(string(v))))
	if normalized == "" {
		return CustomerStatusProspect
	}
	return normalized
}

// Customer is a CRM account record.
type Customer struct {
	ID           string         `json:"id"                      db:"id"`
	Name         string         `json:"name"                    db:"name"`
	ContactEmail *string        `json:"contact_email,omitempty" db:"contact_email"`
	Phone        *string        `json:"phone,omitempty"         db:"phone"`
	Country      *string        `json:"country,omitempty"       db:"country"`
	Status       CustomerStatus `json:"status"                  db:"status"`
	CreatedBy    string         `json:"created_by"              db:"created_by"`
	CreatedAt    time.Time      `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"              db:"updated_at"`
}

// CustomersListOptions controls paging and filtering for listing customers.
type CustomersListOptions struct {
	Limit  int
	Offset int
	Q      *string // substring match on name (ILIKE)
	Status *string // exact match
}

// CreateCustomerRequest represents parameters to create a Customer.
type CreateCustomerRequest struct {
	Name         string         `json:"name"`
	ContactEmail *string        `json:"contact_email,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	Country      *string        `json:"country,omitempty"`
	Status       CustomerStatus `json:"status,omitempty"`
}

// UpdateCustomerRequest represents parameters to update a Customer.
type UpdateCustomerRequest struct {
	Name         *string         `json:"name,omitempty"`
	ContactEmail *string         `json:"contact_email,omitempty"`
	Phone        *string         `json:"phone,omitempty"`
	Country      *string         `json:"country,omitempty"`
	Status       *CustomerStatus `json:"status,omitempty"`
}

// Validate validates CreateCustomerRequest.
func (r *CreateCustomerRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCustomerNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Name = name
	r.Status = normalizeCustomerStatus(r.Status)
	if !r.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateCustomerRequest.
func (r *UpdateCustomerRequest) HasUpdates() bool {
	return r.Name != nil || r.ContactEmail != nil || r.Phone != nil || r.Country != nil || r.Status != nil
}

// Validate validates UpdateCustomerRequest, ensuring at least one field is set.
func (r *UpdateCustomerRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxCustomerNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
		*r.Name = n
	}
	if r.Status != nil {
		status := normalizeCustomerStatus(*r.Status)
		if !status.Valid() {
			return errors.New("invalid status")
		}
		*r.Status = status
	}
	return nil
}
