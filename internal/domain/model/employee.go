//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
)

const maxEmployeeNameLen = 255

// Employee is a directory record granting an email address access to
// the application under a role.
type Employee struct {
	ID        string          `json:"id"         db:"id"`
	Email     string          `json:"email"      db:"email"`
	Name      string          `json:"name"       db:"name"`
	Role      domainauth.Role `json:"role"       db:"role"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateEmployeeRequest represents parameters to create an Employee.
type CreateEmployeeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UpdateEmployeeRequest represents parameters to update an Employee.
type UpdateEmployeeRequest struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

// NormalizeEmail lowercases and trims an email for directory lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates CreateEmployeeRequest and normalizes its fields.
func (r *CreateEmployeeRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	if r.Email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email must be a valid address")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxEmployeeNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Name = name
	role := domainauth.ParseRole(r.Role)
	if !role.Valid() {
		return errors.New("invalid role")
	}
	r.Role = string(role)
	return nil
}

// HasUpdates reports whether any field is set in UpdateEmployeeRequest.
func (r *UpdateEmployeeRequest) HasUpdates() bool {
	return r.Name != nil || r.Role != nil
}

// Validate validates UpdateEmployeeRequest, ensuring at least one field is set.
func (r *UpdateEmployeeRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxEmployeeNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
		*r.Name = n
	}
	if r.Role != nil {
		role := domainauth.ParseRole(*r.Role)
		if !role.Valid() {
			return errors.New("invalid role")
		}
		*r.Role = string(role)
	}
	return nil
}
