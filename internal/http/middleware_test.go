package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/mocks"
	mockauth "github.com/leanchem/connect-api/internal/mocks/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity(email string) domainauth.Identity {
	return domainauth.Identity{
		UserID:    "user-1",
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// okHandler records whether it ran and echoes the principal's email.
func okHandler(t *testing.T, wantEmail string) (http.Handler, *bool) {
	t.Helper()
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantEmail, p.Employee.Email)
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAuthMissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	mw := &AuthMiddleware{
		Verifier:  mocks.NewMockTokenVerifier(ctrl),
		Directory: mocks.NewMockEmployeeDirectory(ctrl),
		Logger:    discardLogger(),
	}

	next, called := okHandler(t, "")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "bad-token").
		Return(domainauth.Identity{}, apperrors.Credential(nil))

	mw := &AuthMiddleware{
		Verifier:  verifier,
		Directory: mocks.NewMockEmployeeDirectory(ctrl),
		Logger:    discardLogger(),
	}

	next, called := okHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuthDirectoryOutageDeniesAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "tok").
		Return(testIdentity("jane@leanchem.test"), nil)

	directory := mocks.NewMockEmployeeDirectory(ctrl)
	directory.EXPECT().CheckEmployeeStatus(gomock.Any(), "jane@leanchem.test").
		Return(domainauth.EmployeeStatus{}, apperrors.Directory(nil, "directory unreachable"))

	mw := &AuthMiddleware{Verifier: verifier, Directory: directory, Logger: discardLogger()}

	next, called := okHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuthNonEmployee(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "tok").
		Return(testIdentity("stranger@gmail.com"), nil)

	directory := mocks.NewMockEmployeeDirectory(ctrl)
	directory.EXPECT().CheckEmployeeStatus(gomock.Any(), "stranger@gmail.com").
		Return(domainauth.EmployeeStatus{IsEmployee: false, Email: "stranger@gmail.com"}, nil)

	mw := &AuthMiddleware{Verifier: verifier, Directory: directory, Logger: discardLogger()}

	next, called := okHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuthNormalizesEmailBeforeLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "tok").
		Return(testIdentity(" Jane@LeanChem.Test "), nil)

	directory := mocks.NewMockEmployeeDirectory(ctrl)
	directory.EXPECT().CheckEmployeeStatus(gomock.Any(), "jane@leanchem.test").
		Return(domainauth.EmployeeStatus{
			IsEmployee: true,
			Email:      "jane@leanchem.test",
			Role:       domainauth.RoleProductManager,
			Name:       "Jane",
		}, nil)

	mw := &AuthMiddleware{Verifier: verifier, Directory: directory, Logger: discardLogger()}

	var principal *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		principal = p
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, principal)
	assert.Equal(t, domainauth.RoleProductManager, principal.Role)
	assert.True(t, principal.Permissions.CanEditPMS)
	assert.False(t, principal.Permissions.CanEditCRM)
	assert.Equal(t, "Jane", principal.Employee.Name)
}

func TestRequireSectionViewVsEdit(t *testing.T) {
	// Sales role: view stock but no edit.
	p := &Principal{
		Role:        domainauth.RoleSales,
		Permissions: domainauth.Resolve(domainauth.RoleSales),
		Employee:    domainauth.EmployeeData{Email: "sales@leanchem.test"},
	}

	handler := RequireSection(domainauth.SectionStock)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	get := httptest.NewRequest(http.MethodGet, "/x", nil)
	get = get.WithContext(SetPrincipalInContext(get.Context(), p))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusOK, rec.Code)

	post := httptest.NewRequest(http.MethodPost, "/x", nil)
	post = post.WithContext(SetPrincipalInContext(post.Context(), p))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, post)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSectionNoPrincipal(t *testing.T) {
	handler := RequireSection(domainauth.SectionStock)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSectionUnknownRoleDenied(t *testing.T) {
	p := &Principal{Role: domainauth.RoleNone, Permissions: domainauth.Resolve(domainauth.RoleNone)}

	handler := RequireSection(domainauth.SectionSales)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(SetPrincipalInContext(req.Context(), p))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Bearer my-token")
	tok, ok := bearerToken(r)
	require.True(t, ok)
	assert.Equal(t, "my-token", tok)

	r.Header.Set("Authorization", "bearer lower-token")
	tok, ok = bearerToken(r)
	require.True(t, ok)
	assert.Equal(t, "lower-token", tok)
}

func TestLoggingAssignsRequestID(t *testing.T) {
	var seen string
	handler := Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestLoggingKeepsUpstreamRequestID(t *testing.T) {
	handler := Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-Id"))
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	handler := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal")
}

// mockauth keeps the static directory double; make sure it satisfies
// the middleware's needs the same way the generated mock does.
func TestRequireAuthWithStaticDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "tok").
		Return(testIdentity("ops@leanchem.test"), nil)

	directory := mockauth.NewStaticEmployeeDirectory()
	directory.Add("ops@leanchem.test", "Ops", domainauth.RoleLogistic)

	mw := &AuthMiddleware{Verifier: verifier, Directory: directory, Logger: discardLogger()}

	next, called := okHandler(t, "ops@leanchem.test")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}
