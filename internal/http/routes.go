package httpx

// Package httpx is the JSON API surface. Routes are grouped by
// business section and gated by the role permission table: read
// methods need view access, mutating methods need edit access.

import (
	"log/slog"
	"net/http"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/ports"
	"github.com/leanchem/connect-api/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth      *service.AuthService
	Verifier  ports.TokenVerifier
	Directory ports.EmployeeDirectory

	Customers CustomerStore
	Products  ProductStore
	Deals     DealStore
	Stock     StockStore

	Logger *slog.Logger
}

// NewRouter creates and configures the API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	authHandlers := &AuthHandlers{Svc: services.Auth, Logger: logger}
	registerAuthRoutes(mux, authHandlers)

	authMW := &AuthMiddleware{Verifier: services.Verifier, Directory: services.Directory, Logger: logger}
	mux.Handle("GET /api/v1/auth/me", Chain(http.HandlerFunc(authHandlers.Me), authMW.RequireAuth))

	registerSectionRoutes(mux, authMW, services)

	return Chain(mux, Logging(logger), Recover(logger))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/v1/auth/signin", h.SignIn)
	mux.HandleFunc("POST /api/v1/auth/magic-link", h.MagicLink)
	mux.HandleFunc("POST /api/v1/auth/reset-password", h.ResetPassword)
	mux.HandleFunc("POST /api/v1/auth/callback", h.Callback)
	mux.HandleFunc("PUT /api/v1/auth/password", h.UpdatePassword)
	mux.HandleFunc("POST /api/v1/auth/signout", h.SignOut)
	mux.HandleFunc("GET /api/v1/auth/check-employee", h.CheckEmployee)
	mux.HandleFunc("GET /api/v1/auth/session", h.Session)
	mux.HandleFunc("GET /api/v1/auth/password-set", h.PasswordSet)
}

func registerSectionRoutes(mux *http.ServeMux, authMW *AuthMiddleware, services RouterServices) {
	guard := func(section domainauth.Section, h http.HandlerFunc) http.Handler {
		return Chain(h, authMW.RequireAuth, RequireSection(section))
	}

	if services.Customers != nil {
		h := &CustomerHandlers{Store: services.Customers}
		mux.Handle("GET /api/v1/crm/customers", guard(domainauth.SectionCRM, h.List))
		mux.Handle("POST /api/v1/crm/customers", guard(domainauth.SectionCRM, h.Create))
		mux.Handle("GET /api/v1/crm/customers/{id}", guard(domainauth.SectionCRM, h.Get))
		mux.Handle("PATCH /api/v1/crm/customers/{id}", guard(domainauth.SectionCRM, h.Update))
		mux.Handle("DELETE /api/v1/crm/customers/{id}", guard(domainauth.SectionCRM, h.Delete))
	}

	if services.Products != nil {
		h := &ProductHandlers{Store: services.Products}
		mux.Handle("GET /api/v1/pms/products", guard(domainauth.SectionPMS, h.List))
		mux.Handle("POST /api/v1/pms/products", guard(domainauth.SectionPMS, h.Create))
		mux.Handle("GET /api/v1/pms/products/{id}", guard(domainauth.SectionPMS, h.Get))
		mux.Handle("PATCH /api/v1/pms/products/{id}", guard(domainauth.SectionPMS, h.Update))
		mux.Handle("DELETE /api/v1/pms/products/{id}", guard(domainauth.SectionPMS, h.Delete))
	}

	if services.Deals != nil {
		h := &DealHandlers{Store: services.Deals}
		mux.Handle("GET /api/v1/pipeline/deals", guard(domainauth.SectionSales, h.List))
		mux.Handle("POST /api/v1/pipeline/deals", guard(domainauth.SectionSales, h.Create))
		mux.Handle("GET /api/v1/pipeline/deals/{id}", guard(domainauth.SectionSales, h.Get))
		mux.Handle("PATCH /api/v1/pipeline/deals/{id}", guard(domainauth.SectionSales, h.Update))
		mux.Handle("DELETE /api/v1/pipeline/deals/{id}", guard(domainauth.SectionSales, h.Delete))
	}

	if services.Stock != nil {
		h := &StockHandlers{Store: services.Stock}
		mux.Handle("GET /api/v1/stock/movements", guard(domainauth.SectionStock, h.ListMovements))
		mux.Handle("POST /api/v1/stock/movements", guard(domainauth.SectionStock, h.RecordMovement))
		mux.Handle("GET /api/v1/stock/levels", guard(domainauth.SectionStock, h.Levels))
		mux.Handle("GET /api/v1/stock/levels/{productID}", guard(domainauth.SectionStock, h.Level))
	}
}
