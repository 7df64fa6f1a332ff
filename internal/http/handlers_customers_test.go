package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/mocks"
	mockauth "github.com/leanchem/connect-api/internal/mocks/auth"
)

// fakeCustomerStore is a hand-written double; override the Func
// fields per test.
type fakeCustomerStore struct {
	CreateFunc func(ctx context.Context, createdBy string, req *model.CreateCustomerRequest) (*model.Customer, error)
	GetFunc    func(ctx context.Context, id string) (*model.Customer, error)
	ListFunc   func(ctx context.Context, opts model.CustomersListOptions) ([]*model.Customer, error)
	UpdateFunc func(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error)
	DeleteFunc func(ctx context.Context, id string) (bool, error)
}

func (f *fakeCustomerStore) Create(ctx context.Context, createdBy string, req *model.CreateCustomerRequest) (*model.Customer, error) {
	return f.CreateFunc(ctx, createdBy, req)
}

func (f *fakeCustomerStore) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	return f.GetFunc(ctx, id)
}

func (f *fakeCustomerStore) List(ctx context.Context, opts model.CustomersListOptions) ([]*model.Customer, error) {
	return f.ListFunc(ctx, opts)
}

func (f *fakeCustomerStore) Update(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error) {
	return f.UpdateFunc(ctx, id, req)
}

func (f *fakeCustomerStore) Delete(ctx context.Context, id string) (bool, error) {
	return f.DeleteFunc(ctx, id)
}

// newSectionRouter builds a router whose verifier accepts any
// "<name>-token" bearer and maps it to "<name>@leanchem.test". Roles
// come from the static directory.
func newSectionRouter(t *testing.T, customers CustomerStore) (http.Handler, *mockauth.StaticEmployeeDirectory) {
	t.Helper()

	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, raw string) (domainauth.Identity, error) {
			name, ok := strings.CutSuffix(raw, "-token")
			if !ok {
				return domainauth.Identity{}, apperrors.Credential(nil)
			}
			return domainauth.Identity{
				UserID:    "user-" + name,
				Email:     name + "@leanchem.test",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	).AnyTimes()

	directory := mockauth.NewStaticEmployeeDirectory()
	router := NewRouter(RouterServices{
		Verifier:  verifier,
		Directory: directory,
		Customers: customers,
		Logger:    discardLogger(),
	})
	return router, directory
}

func doJSON(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCustomersListRequiresAuth(t *testing.T) {
	router, _ := newSectionRouter(t, &fakeCustomerStore{})

	rec := doJSON(router, http.MethodGet, "/api/v1/crm/customers", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomersListPassesFilters(t *testing.T) {
	var got model.CustomersListOptions
	store := &fakeCustomerStore{
		ListFunc: func(_ context.Context, opts model.CustomersListOptions) ([]*model.Customer, error) {
			got = opts
			return []*model.Customer{{ID: "c1", Name: "Acme"}}, nil
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("sales@leanchem.test", "Sales", domainauth.RoleSales)

	rec := doJSON(router, http.MethodGet,
		"/api/v1/crm/customers?q=acme&status=active&limit=10&offset=5", "sales-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 5, got.Offset)
	require.NotNil(t, got.Q)
	assert.Equal(t, "acme", *got.Q)
	require.NotNil(t, got.Status)
	assert.Equal(t, "active", *got.Status)
	assert.Contains(t, rec.Body.String(), `"customers"`)
}

func TestCustomersCreateStampsPrincipal(t *testing.T) {
	store := &fakeCustomerStore{
		CreateFunc: func(_ context.Context, createdBy string, req *model.CreateCustomerRequest) (*model.Customer, error) {
			if err := req.Validate(); err != nil {
				return nil, apperrors.Validation(err.Error())
			}
			return &model.Customer{ID: "c1", Name: req.Name, CreatedBy: createdBy, Status: req.Status}, nil
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("admin@leanchem.test", "Admin", domainauth.RoleAdmin)

	rec := doJSON(router, http.MethodPost, "/api/v1/crm/customers", "admin-token",
		`{"name":"Acme Chemicals"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var customer model.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))
	assert.Equal(t, "admin@leanchem.test", customer.CreatedBy)
	assert.Equal(t, model.CustomerStatusProspect, customer.Status)
}

func TestCustomersCreateDeniedForViewOnlyRole(t *testing.T) {
	store := &fakeCustomerStore{
		CreateFunc: func(_ context.Context, _ string, _ *model.CreateCustomerRequest) (*model.Customer, error) {
			t.Fatal("store must not be reached")
			return nil, nil
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("pm@leanchem.test", "PM", domainauth.RoleProductManager)

	rec := doJSON(router, http.MethodPost, "/api/v1/crm/customers", "pm-token",
		`{"name":"Acme Chemicals"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomersSectionDeniedForUnknownRole(t *testing.T) {
	store := &fakeCustomerStore{
		ListFunc: func(_ context.Context, _ model.CustomersListOptions) ([]*model.Customer, error) {
			t.Fatal("store must not be reached")
			return nil, nil
		},
	}
	router, directory := newSectionRouter(t, store)
	// An employee row whose role text never parsed; all access denied.
	directory.Add("ghost@leanchem.test", "Ghost", domainauth.RoleNone)

	rec := doJSON(router, http.MethodGet, "/api/v1/crm/customers", "ghost-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomersGetNotFound(t *testing.T) {
	store := &fakeCustomerStore{
		GetFunc: func(_ context.Context, id string) (*model.Customer, error) {
			return nil, apperrors.NotFoundf("customer %s not found", id)
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("admin@leanchem.test", "Admin", domainauth.RoleAdmin)

	rec := doJSON(router, http.MethodGet, "/api/v1/crm/customers/missing", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomersUpdate(t *testing.T) {
	store := &fakeCustomerStore{
		UpdateFunc: func(_ context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error) {
			require.Equal(t, "c1", id)
			require.NotNil(t, req.Status)
			return &model.Customer{ID: id, Name: "Acme", Status: *req.Status}, nil
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("admin@leanchem.test", "Admin", domainauth.RoleAdmin)

	rec := doJSON(router, http.MethodPatch, "/api/v1/crm/customers/c1", "admin-token",
		`{"status":"active"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active"`)
}

func TestCustomersDelete(t *testing.T) {
	deleted := map[string]bool{"c1": true}
	store := &fakeCustomerStore{
		DeleteFunc: func(_ context.Context, id string) (bool, error) {
			return deleted[id], nil
		},
	}
	router, directory := newSectionRouter(t, store)
	directory.Add("admin@leanchem.test", "Admin", domainauth.RoleAdmin)

	rec := doJSON(router, http.MethodDelete, "/api/v1/crm/customers/c1", "admin-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/api/v1/crm/customers/c2", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomersInvalidBearerToken(t *testing.T) {
	router, _ := newSectionRouter(t, &fakeCustomerStore{})

	rec := doJSON(router, http.MethodGet, "/api/v1/crm/customers", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
