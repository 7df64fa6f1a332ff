package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/service"
)

// AuthHandlers exposes the sign-in lifecycle over JSON.
type AuthHandlers struct {
	Svc    *service.AuthService
	Logger *slog.Logger
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type callbackRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		WriteAppError(w, apperrors.Validation("email and password are required"))
		return
	}

	state, err := h.Svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// MagicLink handles POST /api/v1/auth/magic-link. The response is the
// same whether or not mail was sent so addresses cannot be probed,
// except for throttling which is reported explicitly.
func (h *AuthHandlers) MagicLink(w http.ResponseWriter, r *http.Request) {
	h.sendLink(w, r, h.Svc.SignInWithMagicLink)
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.sendLink(w, r, h.Svc.ResetPassword)
}

func (h *AuthHandlers) sendLink(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, email string) error) {
	var req emailRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		WriteAppError(w, apperrors.Validation("email is required"))
		return
	}

	if err := send(r.Context(), req.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// Callback handles POST /api/v1/auth/callback: the tokens extracted
// from an emailed link are exchanged for an employee session.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		WriteAppError(w, apperrors.Validation("access_token and refresh_token are required"))
		return
	}

	state, err := h.Svc.CompleteLink(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// UpdatePassword handles PUT /api/v1/auth/password.
func (h *AuthHandlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.UpdatePassword(r.Context(), req.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SignOut handles POST /api/v1/auth/signout. Local state is always
// cleared; a provider failure is still reported so callers know the
// hosted session may linger.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.SignOut(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckEmployee handles GET /api/v1/auth/check-employee?email=...
func (h *AuthHandlers) CheckEmployee(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		WriteAppError(w, apperrors.Validation("email query parameter is required"))
		return
	}

	status, err := h.Svc.CheckEmployee(r.Context(), email)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Session handles GET /api/v1/auth/session: the current mirrored
// session state, including the loading flag during bootstrap.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.Session())
}

// PasswordSet handles GET /api/v1/auth/password-set.
func (h *AuthHandlers) PasswordSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.Svc.PasswordSet(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"password_set": set})
}

// Me handles GET /api/v1/auth/me behind the auth middleware.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Credential(nil))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"email":       p.Employee.Email,
		"name":        p.Employee.Name,
		"role":        p.Role,
		"permissions": p.Permissions,
	})
}
