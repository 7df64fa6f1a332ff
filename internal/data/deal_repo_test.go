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

func createTestCustomer(t *testing.T, db *sql.DB) *model.Customer {
	t.Helper()
	c, err := NewCustomerRepo(db).Create(context.Background(), "owner@leanchem.test", &model.CreateCustomerRequest{
		Name: fmt.Sprintf("Deal Customer %d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	return c
}

func TestDealRepo_CRUD(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewDealRepo(db)

		customer := createTestCustomer(t, db)

		created, err := repo.Create(ctx, "owner@leanchem.test", &model.CreateDealRequest{
			CustomerID: customer.ID,
			Amount:     1200,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, model.DealStageLead, created.Stage)
		assert.Equal(t, "owner@leanchem.test", created.OwnerEmail)

		won := model.DealStageWon
		newAmount := 1500.0
		updated, err := repo.Update(ctx, created.ID, model.UpdateDealRequest{
			Stage:  &won,
			Amount: &newAmount,
		})
		require.NoError(t, err)
		assert.Equal(t, model.DealStageWon, updated.Stage)
		assert.InDelta(t, 1500.0, updated.Amount, 0.001)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestDealRepo_Create_UnknownCustomer(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		_, err := NewDealRepo(db).Create(context.Background(), "owner@leanchem.test", &model.CreateDealRequest{
			CustomerID: "00000000-0000-0000-0000-000000000000",
			Amount:     100,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsForeignKey(err))
	})
}

func TestDealRepo_List_FilterByStageAndCustomer(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewDealRepo(db)

		customer := createTestCustomer(t, db)

		_, err := repo.Create(ctx, "owner@leanchem.test", &model.CreateDealRequest{
			CustomerID: customer.ID,
			Stage:      model.DealStageQualified,
			Amount:     500,
		})
		require.NoError(t, err)
		_, err = repo.Create(ctx, "owner@leanchem.test", &model.CreateDealRequest{
			CustomerID: customer.ID,
			Stage:      model.DealStageWon,
			Amount:     900,
		})
		require.NoError(t, err)

		all, err := repo.List(ctx, model.DealsListOptions{CustomerID: &customer.ID})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		stage := string(model.DealStageWon)
		wonOnly, err := repo.List(ctx, model.DealsListOptions{CustomerID: &customer.ID, Stage: &stage})
		require.NoError(t, err)
		require.Len(t, wonOnly, 1)
		assert.Equal(t, model.DealStageWon, wonOnly[0].Stage)
	})
}
