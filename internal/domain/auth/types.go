package auth

import "time"

// Metadata is a free-form claims bag attached to an identity. The
// identity provider maintains two namespaces: one the user can write
// (user_metadata) and one only the service role can write
// (app_metadata).
type Metadata map[string]any

// Identity represents the authenticated principal returned by the
// identity provider. Adapters map provider-specific payloads into
// this shape.
type Identity struct {
	UserID       string
	Email        string
	UserMetadata Metadata
	AppMetadata  Metadata
	ExpiresAt    time.Time // absolute expiry of the provider token
}

// PasswordSetKey marks identity metadata once the user has created a
// password. PasswordSetAtKey carries the RFC3339 timestamp of when.
const (
	PasswordSetKey   = "password_set"
	PasswordSetAtKey = "password_set_at"
)

// EmployeeStatus is the employee directory's answer for an email.
// Directory adapters run the raw role text through ParseRole, so Role
// is always a member of the closed set (RoleNone for junk rows).
type EmployeeStatus struct {
	IsEmployee bool   `json:"is_employee"`
	Email      string `json:"email"`
	Role       Role   `json:"role,omitempty"`
	Name       string `json:"name,omitempty"`
}

// EmployeeData is the slice of the employee record mirrored into
// session state.
type EmployeeData struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SessionState mirrors the identity provider's session, layered with
// the employee-membership check. It is rebuilt on every load and
// never persisted by this service; the provider owns durable session
// tokens.
type SessionState struct {
	Identity    *Identity     `json:"-"`
	IsEmployee  bool          `json:"is_employee"`
	Role        Role          `json:"role"`
	Employee    *EmployeeData `json:"employee,omitempty"`
	Permissions PermissionSet `json:"permissions"`
	Loading     bool          `json:"loading"`
}

// ZeroSessionState returns the unauthenticated shape with all
// capabilities cleared.
func ZeroSessionState() SessionState {
	return SessionState{}
}

// Authenticated reports whether the state holds a verified employee
// session.
func (s SessionState) Authenticated() bool {
	return s.Identity != nil && s.IsEmployee
}
