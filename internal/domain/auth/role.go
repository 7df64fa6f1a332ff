package auth

// Package auth contains domain-level types for authentication and
// authorization. It is pure and free of framework/adapter concerns.

import "strings"

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON transport.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProductManager Role = "product manager"
	RoleSalesAndStock  Role = "sales and stock"
	RoleSales          Role = "sales"
	RoleLogistic       Role = "logistic"

	// RoleNone is the fail-closed default for unknown or absent roles.
	// It carries no capabilities.
	RoleNone Role = ""
)

// ParseRole maps a raw role string to a Role. Matching is
// case-insensitive and ignores surrounding whitespace. Anything
// outside the closed set maps to RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleProductManager:
		return RoleProductManager
	case RoleSalesAndStock:
		return RoleSalesAndStock
	case RoleSales:
		return RoleSales
	case RoleLogistic:
		return RoleLogistic
	default:
		return RoleNone
	}
}

// Valid reports whether the role is a member of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProductManager, RoleSalesAndStock, RoleSales, RoleLogistic:
		return true
	default:
		return false
	}
}

// Section identifies one of the four application sections gated by
// permissions.
type Section string

const (
	SectionCRM   Section = "crm"
	SectionPMS   Section = "pms"
	SectionSales Section = "sales"
	SectionStock Section = "stock"
)

// ParseSection maps a raw section string to a Section. Unknown input
// yields ok=false; callers must treat that as no access.
func ParseSection(raw string) (Section, bool) {
	switch Section(strings.ToLower(strings.TrimSpace(raw))) {
	case SectionCRM:
		return SectionCRM, true
	case SectionPMS:
		return SectionPMS, true
	case SectionSales:
		return SectionSales, true
	case SectionStock:
		return SectionStock, true
	default:
		return "", false
	}
}
