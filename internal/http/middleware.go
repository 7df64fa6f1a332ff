package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/ports"
)

// respWriter captures the status code written by a handler so the
// logging middleware can report it.
type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging assigns a request ID, logs method/path/status/duration, and
// echoes the ID back in the X-Request-Id header.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-Id")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", reqID)

			rw := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(setRequestID(r.Context(), reqID)))

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration", time.Since(start),
				"request_id", reqID,
			)
		})
	}
}

// Recover converts panics into 500 responses and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in http handler",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: string(apperrors.ErrCodeInternal),
						Err:     apperrors.Internal("internal server error"),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware verifies bearer tokens and resolves the caller into
// a Principal. Verification is offline (signature + expiry against the
// provider's JWKS); employee membership comes from the directory on
// every request so a removed employee loses access immediately.
type AuthMiddleware struct {
	Verifier  ports.TokenVerifier
	Directory ports.EmployeeDirectory
	Logger    *slog.Logger
}

// RequireAuth rejects requests without a valid employee session.
// Directory failures deny access rather than guessing.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteAppError(w, apperrors.Credential(nil))
			return
		}

		identity, err := m.Verifier.Verify(r.Context(), token)
		if err != nil {
			WriteAppError(w, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(identity.Email))
		status, err := m.Directory.CheckEmployeeStatus(r.Context(), email)
		if err != nil {
			m.Logger.Error("employee directory unavailable", "error", err, "request_id", RequestIDFromContext(r.Context()))
			WriteAppError(w, apperrors.AccessDenied("employee status could not be verified"))
			return
		}
		if !status.IsEmployee {
			WriteAppError(w, apperrors.AccessDenied("not a registered employee"))
			return
		}

		role := status.Role
		p := &Principal{
			Identity:    identity,
			Role:        role,
			Permissions: domainauth.Resolve(role),
			Employee:    domainauth.EmployeeData{Email: status.Email, Name: status.Name},
		}
		next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), p)))
	})
}

// RequireSection gates a section's routes on the caller's role.
// Read methods need view permission; everything else needs edit.
func RequireSection(section domainauth.Section) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteAppError(w, apperrors.Credential(nil))
				return
			}

			allowed := false
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				allowed = domainauth.CanView(p.Role, section)
			default:
				allowed = domainauth.CanEdit(p.Role, section)
			}
			if !allowed {
				WriteAppError(w, apperrors.AccessDenied("role "+string(p.Role)+" may not access this section"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// Chain applies middlewares to a handler in declaration order: the
// first middleware is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
