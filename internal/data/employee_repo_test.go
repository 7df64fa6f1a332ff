package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/testutil"
)

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@leanchem.test", prefix, time.Now().UnixNano())
}

func TestEmployeeRepo_CreateAndCheckStatus(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEmployeeRepo(db)

		email := uniqueEmail("jane")
		created, err := repo.Create(ctx, &model.CreateEmployeeRequest{
			Email: email,
			Name:  "Jane Doe",
			Role:  "Product Manager",
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		// Role input is normalized on the way in.
		assert.Equal(t, domainauth.RoleProductManager, created.Role)

		status, err := repo.CheckEmployeeStatus(ctx, email)
		require.NoError(t, err)
		assert.True(t, status.IsEmployee)
		assert.Equal(t, email, status.Email)
		assert.Equal(t, domainauth.RoleProductManager, status.Role)
		assert.Equal(t, "Jane Doe", status.Name)
	})
}

func TestEmployeeRepo_CheckStatus_NormalizesEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEmployeeRepo(db)

		email := uniqueEmail("omar")
		_, err := repo.Create(ctx, &model.CreateEmployeeRequest{
			Email: email,
			Name:  "Omar",
			Role:  "sales",
		})
		require.NoError(t, err)

		// Casing and surrounding whitespace must not matter.
		shouty := "  " + strings.ToUpper(email) + "  "
		status, err := repo.CheckEmployeeStatus(ctx, shouty)
		require.NoError(t, err)
		assert.True(t, status.IsEmployee)
		assert.Equal(t, domainauth.RoleSales, status.Role)
	})
}

func TestEmployeeRepo_CheckStatus_UnknownIsNotAnError(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		status, err := NewEmployeeRepo(db).CheckEmployeeStatus(context.Background(), uniqueEmail("ghost"))
		require.NoError(t, err)
		assert.False(t, status.IsEmployee)
		assert.Equal(t, domainauth.RoleNone, status.Role)
	})
}

func TestEmployeeRepo_CheckStatus_JunkRoleFailsClosed(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()

		// Bypass Create's validation the way a hand-edited row would.
		email := uniqueEmail("edited")
		_, err := db.ExecContext(ctx, `
			INSERT INTO employees (email, name, role)
			VALUES ($1, 'Edited', 'superuser')
		`, email)
		require.NoError(t, err)

		status, err := NewEmployeeRepo(db).CheckEmployeeStatus(ctx, email)
		require.NoError(t, err)
		assert.True(t, status.IsEmployee)
		assert.Equal(t, domainauth.RoleNone, status.Role)
		assert.Equal(t, domainauth.PermissionSet{}, domainauth.Resolve(status.Role))
	})
}

func TestEmployeeRepo_Create_DuplicateEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEmployeeRepo(db)

		email := uniqueEmail("dup")
		_, err := repo.Create(ctx, &model.CreateEmployeeRequest{Email: email, Name: "One", Role: "admin"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, &model.CreateEmployeeRequest{Email: email, Name: "Two", Role: "admin"})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestEmployeeRepo_Create_RejectsUnknownRole(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		_, err := NewEmployeeRepo(db).Create(context.Background(), &model.CreateEmployeeRequest{
			Email: uniqueEmail("bad"),
			Name:  "Bad Role",
			Role:  "superuser",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestEmployeeRepo_UpdateAndDelete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEmployeeRepo(db)

		email := uniqueEmail("mut")
		_, err := repo.Create(ctx, &model.CreateEmployeeRequest{Email: email, Name: "Before", Role: "logistic"})
		require.NoError(t, err)

		newRole := "sales and stock"
		updated, err := repo.Update(ctx, email, model.UpdateEmployeeRequest{Role: &newRole})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleSalesAndStock, updated.Role)
		assert.Equal(t, "Before", updated.Name)

		deleted, err := repo.Delete(ctx, email)
		require.NoError(t, err)
		assert.True(t, deleted)

		status, err := repo.CheckEmployeeStatus(ctx, email)
		require.NoError(t, err)
		assert.False(t, status.IsEmployee)

		deleted, err = repo.Delete(ctx, email)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestEmployeeRepo_List(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEmployeeRepo(db)

		for i := 0; i < 3; i++ {
			_, err := repo.Create(ctx, &model.CreateEmployeeRequest{
				Email: uniqueEmail(fmt.Sprintf("list%d", i)),
				Name:  fmt.Sprintf("Employee %d", i),
				Role:  "sales",
			})
			require.NoError(t, err)
		}

		lst, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(lst), 3)
	})
}
