package auth

// PermissionSet is the capability vector derived from a Role: one
// view flag and one edit flag per section. View and edit are declared
// independently per role; edit never implies view.
type PermissionSet struct {
	CanViewCRM   bool `json:"can_view_crm"`
	CanEditCRM   bool `json:"can_edit_crm"`
	CanViewPMS   bool `json:"can_view_pms"`
	CanEditPMS   bool `json:"can_edit_pms"`
	CanViewSales bool `json:"can_view_sales"`
	CanEditSales bool `json:"can_edit_sales"`
	CanViewStock bool `json:"can_view_stock"`
	CanEditStock bool `json:"can_edit_stock"`
}

// permissionTable is the fixed role-to-capability mapping. Changing a
// cell here changes what a role can do everywhere; keep it in sync
// with the employee handbook.
var permissionTable = map[Role]PermissionSet{
	RoleAdmin: {
		CanViewCRM: true, CanEditCRM: true,
		CanViewPMS: true, CanEditPMS: true,
		CanViewSales: true, CanEditSales: true,
		CanViewStock: true, CanEditStock: true,
	},
	RoleProductManager: {
		CanViewCRM: true, CanEditCRM: false,
		CanViewPMS: true, CanEditPMS: true,
		CanViewSales: true, CanEditSales: false,
		CanViewStock: true, CanEditStock: false,
	},
	RoleSalesAndStock: {
		CanViewCRM: true, CanEditCRM: true,
		CanViewPMS: true, CanEditPMS: false,
		CanViewSales: true, CanEditSales: true,
		CanViewStock: true, CanEditStock: true,
	},
	RoleSales: {
		CanViewCRM: true, CanEditCRM: true,
		CanViewPMS: true, CanEditPMS: false,
		CanViewSales: true, CanEditSales: true,
		CanViewStock: true, CanEditStock: false,
	},
	RoleLogistic: {
		CanViewCRM: true, CanEditCRM: false,
		CanViewPMS: true, CanEditPMS: true,
		CanViewSales: true, CanEditSales: false,
		CanViewStock: true, CanEditStock: false,
	},
}

// Resolve maps a Role to its PermissionSet. It is pure and total:
// unknown roles (including RoleNone) yield the zero-capability set.
// Input is parsed case-insensitively so Resolve("ADMIN") equals
// Resolve("admin").
func Resolve(role Role) PermissionSet {
	if perms, ok := permissionTable[ParseRole(string(role))]; ok {
		return perms
	}
	return PermissionSet{}
}

// CanView reports whether the role may view the given section.
func CanView(role Role, section Section) bool {
	perms := Resolve(role)
	switch section {
	case SectionCRM:
		return perms.CanViewCRM
	case SectionPMS:
		return perms.CanViewPMS
	case SectionSales:
		return perms.CanViewSales
	case SectionStock:
		return perms.CanViewStock
	default:
		return false
	}
}

// CanEdit reports whether the role may edit the given section.
func CanEdit(role Role, section Section) bool {
	perms := Resolve(role)
	switch section {
	case SectionCRM:
		return perms.CanEditCRM
	case SectionPMS:
		return perms.CanEditPMS
	case SectionSales:
		return perms.CanEditSales
	case SectionStock:
		return perms.CanEditStock
	default:
		return false
	}
}
