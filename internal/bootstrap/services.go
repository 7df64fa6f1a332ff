package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/leanchem/connect-api/config"
	"github.com/leanchem/connect-api/internal/adapters/gotrue"
	redisadapter "github.com/leanchem/connect-api/internal/adapters/redis"
	"github.com/leanchem/connect-api/internal/adapters/tokenverify"
	"github.com/leanchem/connect-api/internal/data"
	"github.com/leanchem/connect-api/internal/service"
	"github.com/leanchem/connect-api/internal/session"
)

// Dependencies holds the shared infrastructure services are built on.
type Dependencies struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// ServiceContainer holds all initialized services and adapters.
type ServiceContainer struct {
	Auth     *service.AuthService
	Provider *gotrue.Client
	Verifier *tokenverify.Verifier
	Store    *session.Store

	Employees *data.EmployeeRepo
	Customers *data.CustomerRepo
	Products  *data.ProductRepo
	Deals     *data.DealRepo
	Stock     *data.StockRepo
}

// BuildServices wires adapters and repositories into services. ctx
// governs the token verifier's key-set refreshes.
func BuildServices(ctx context.Context, deps Dependencies) (*ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	provider, err := gotrue.NewClient(gotrue.Config{
		BaseURL:       cfg.Auth.Provider.BaseURL,
		APIKey:        cfg.Auth.Provider.APIKey,
		RefreshLeeway: cfg.Auth.Provider.RefreshLeeway,
	})
	if err != nil {
		return nil, fmt.Errorf("identity provider: %w", err)
	}

	verifier, err := tokenverify.NewVerifier(ctx, tokenverify.Config{
		Issuer:           cfg.Auth.Verifier.Issuer,
		JWKSURL:          cfg.Auth.Verifier.JWKSURL,
		Audience:         cfg.Auth.Verifier.Audience,
		EmailPath:        cfg.Auth.Verifier.EmailPath,
		UserMetadataPath: cfg.Auth.Verifier.UserMetadataPath,
		AppMetadataPath:  cfg.Auth.Verifier.AppMetadataPath,
	})
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	employees := data.NewEmployeeRepo(deps.DB)
	limiter := redisadapter.NewLinkLimiter(deps.Redis, int64(cfg.Auth.LinkLimit.Limit), cfg.Auth.LinkLimit.Window)
	store := session.NewStore()

	auth := service.NewAuthService(service.AuthServiceOptions{
		Provider:        provider,
		Directory:       employees,
		Limiter:         limiter,
		Store:           store,
		RedirectBaseURL: cfg.Auth.RedirectBaseURL,
		Logger:          logger,
	})

	return &ServiceContainer{
		Auth:      auth,
		Provider:  provider,
		Verifier:  verifier,
		Store:     store,
		Employees: employees,
		Customers: data.NewCustomerRepo(deps.DB),
		Products:  data.NewProductRepo(deps.DB),
		Deals:     data.NewDealRepo(deps.DB),
		Stock:     data.NewStockRepo(deps.DB),
	}, nil
}
