package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/testutil"
)

func TestCustomerRepo_CRUD(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCustomerRepo(db)

		name := fmt.Sprintf("Acme Chemicals %d", time.Now().UnixNano())
		created, err := repo.Create(ctx, "jane@leanchem.test", &model.CreateCustomerRequest{
			Name:         name,
			ContactEmail: testutil.StringPtr("buyer@acme.test"),
			Country:      testutil.StringPtr("KE"),
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, model.CustomerStatusProspect, created.Status)
		assert.Equal(t, "jane@leanchem.test", created.CreatedBy)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)

		active := model.CustomerStatusActive
		updated, err := repo.Update(ctx, created.ID, model.UpdateCustomerRequest{Status: &active})
		require.NoError(t, err)
		assert.Equal(t, model.CustomerStatusActive, updated.Status)
		assert.Equal(t, name, updated.Name)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, created.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCustomerRepo_List_Filters(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCustomerRepo(db)

		marker := fmt.Sprintf("flt%d", time.Now().UnixNano())
		active := model.CustomerStatusActive
		for i, status := range []model.CustomerStatus{model.CustomerStatusProspect, active} {
			_, err := repo.Create(ctx, "jane@leanchem.test", &model.CreateCustomerRequest{
				Name:   fmt.Sprintf("%s customer %d", marker, i),
				Status: status,
			})
			require.NoError(t, err)
		}

		q := marker
		all, err := repo.List(ctx, model.CustomersListOptions{Q: &q})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		statusFilter := string(active)
		onlyActive, err := repo.List(ctx, model.CustomersListOptions{Q: &q, Status: &statusFilter})
		require.NoError(t, err)
		require.Len(t, onlyActive, 1)
		assert.Equal(t, active, onlyActive[0].Status)
	})
}

func TestCustomerRepo_Create_Validation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		_, err := NewCustomerRepo(db).Create(context.Background(), "jane@leanchem.test", &model.CreateCustomerRequest{Name: "   "})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}
