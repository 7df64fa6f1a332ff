package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allTrue() PermissionSet {
	return PermissionSet{
		CanViewCRM: true, CanEditCRM: true,
		CanViewPMS: true, CanEditPMS: true,
		CanViewSales: true, CanEditSales: true,
		CanViewStock: true, CanEditStock: true,
	}
}

func TestResolve_Table(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want PermissionSet
	}{
		{
			name: "admin has everything",
			role: RoleAdmin,
			want: allTrue(),
		},
		{
			name: "product manager edits PMS only",
			role: RoleProductManager,
			want: PermissionSet{
				CanViewCRM: true,
				CanViewPMS: true, CanEditPMS: true,
				CanViewSales: true,
				CanViewStock: true,
			},
		},
		{
			name: "sales and stock edits everything except PMS",
			role: RoleSalesAndStock,
			want: PermissionSet{
				CanViewCRM: true, CanEditCRM: true,
				CanViewPMS: true,
				CanViewSales: true, CanEditSales: true,
				CanViewStock: true, CanEditStock: true,
			},
		},
		{
			name: "sales edits CRM and pipeline but not stock",
			role: RoleSales,
			want: PermissionSet{
				CanViewCRM: true, CanEditCRM: true,
				CanViewPMS: true,
				CanViewSales: true, CanEditSales: true,
				CanViewStock: true,
			},
		},
		{
			name: "logistic edits PMS only",
			role: RoleLogistic,
			want: PermissionSet{
				CanViewCRM: true,
				CanViewPMS: true, CanEditPMS: true,
				CanViewSales: true,
				CanViewStock: true,
			},
		},
		{
			name: "empty role has nothing",
			role: RoleNone,
			want: PermissionSet{},
		},
		{
			name: "unrecognized role has nothing",
			role: Role("intern"),
			want: PermissionSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.role))
		})
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Resolve(RoleAdmin), Resolve(Role("ADMIN")))
	assert.Equal(t, Resolve(RoleSalesAndStock), Resolve(Role("Sales And Stock")))
	assert.Equal(t, Resolve(RoleSales), Resolve(Role("  sales  ")))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" Product Manager ", RoleProductManager},
		{"sales and stock", RoleSalesAndStock},
		{"sales", RoleSales},
		{"logistic", RoleLogistic},
		{"", RoleNone},
		{"ceo", RoleNone},
		{"salesperson", RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.raw))
		})
	}
}

func TestCanViewCanEdit(t *testing.T) {
	// Scenario: sales role projections match the table exactly.
	assert.True(t, CanView(RoleSales, SectionCRM))
	assert.True(t, CanEdit(RoleSales, SectionCRM))
	assert.True(t, CanView(RoleSales, SectionPMS))
	assert.False(t, CanEdit(RoleSales, SectionPMS))
	assert.True(t, CanView(RoleSales, SectionSales))
	assert.True(t, CanEdit(RoleSales, SectionSales))
	assert.True(t, CanView(RoleSales, SectionStock))
	assert.False(t, CanEdit(RoleSales, SectionStock))

	// Unknown section is never viewable or editable.
	assert.False(t, CanView(RoleAdmin, Section("finance")))
	assert.False(t, CanEdit(RoleAdmin, Section("finance")))

	// Unknown role gets nothing anywhere.
	for _, sec := range []Section{SectionCRM, SectionPMS, SectionSales, SectionStock} {
		assert.False(t, CanView(RoleNone, sec))
		assert.False(t, CanEdit(RoleNone, sec))
	}
}

func TestParseSection(t *testing.T) {
	for _, raw := range []string{"crm", "CRM", " pms ", "sales", "stock"} {
		_, ok := ParseSection(raw)
		assert.True(t, ok, raw)
	}
	_, ok := ParseSection("quotations")
	assert.False(t, ok)
}
