package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/leanchem/connect-api/internal/data/pgxutil"
	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/ports"
)

// EmployeeRepo provides database operations for the employee
// directory. It is the source of truth for who may use the
// application and with which role.
type EmployeeRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.EmployeeDirectory = (*EmployeeRepo)(nil)

// NewEmployeeRepo creates a new EmployeeRepo with real time provider.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo {
	return &EmployeeRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEmployeeRepoWithTimeProvider creates a new EmployeeRepo with a custom time provider (useful for tests).
func NewEmployeeRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EmployeeRepo {
	return &EmployeeRepo{DB: db, timeProvider: tp}
}

// CheckEmployeeStatus looks up an email in the directory. An unknown
// email is a definitive negative answer, not an error; infrastructure
// failures surface as directory errors so callers can fail closed.
func (r *EmployeeRepo) CheckEmployeeStatus(ctx context.Context, email string) (domainauth.EmployeeStatus, error) {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return domainauth.EmployeeStatus{IsEmployee: false}, nil
	}

	var emp model.Employee
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, employeeGetByEmailQuery, normalized)
		if err != nil {
			return err
		}
		defer rows.Close()
		emp, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Employee])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.EmployeeStatus{IsEmployee: false, Email: normalized}, nil
		}
		return domainauth.EmployeeStatus{}, apperrors.Directory(err, "employee lookup failed")
	}

	return domainauth.EmployeeStatus{
		IsEmployee: true,
		Email:      emp.Email,
		// Re-parse the stored role so a hand-edited row degrades to
		// RoleNone instead of leaking an unknown role downstream.
		Role: domainauth.ParseRole(string(emp.Role)),
		Name: emp.Name,
	}, nil
}

// Create inserts a new employee.
func (r *EmployeeRepo) Create(ctx context.Context, req *model.CreateEmployeeRequest) (*model.Employee, error) {
	if req == nil {
		return nil, errors.New("create employee request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Employee
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO employees (email, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id, email, name, role, created_at, updated_at
		`, req.Email, req.Name, req.Role, createdAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Employee])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByEmail retrieves an employee by normalized email.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, employeeGetByEmailQuery, model.NormalizeEmail(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		emp, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Employee])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &emp, nil
}

// List retrieves employees ordered by email.
func (r *EmployeeRepo) List(ctx context.Context, limit, offset int) ([]*model.Employee, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Employee
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, employeeListQuery, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Employee])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	res := make([]*model.Employee, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of an employee identified by email.
func (r *EmployeeRepo) Update(ctx context.Context, email string, req model.UpdateEmployeeRequest) (*model.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setParts := make([]string, 0, 3)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, *req.Name)
	}
	if req.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *req.Role)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, model.NormalizeEmail(email))
	query := "UPDATE employees SET " + strings.Join(setParts, ", ") +
		" WHERE lower(email) = $" + strconv.Itoa(len(args)) +
		" RETURNING id, email, name, role, created_at, updated_at"

	var out model.Employee
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Employee])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes an employee by email.
func (r *EmployeeRepo) Delete(ctx context.Context, email string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM employees WHERE lower(email) = $1`, model.NormalizeEmail(email))
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete employee: %w", err)
	}
	return rows > 0, nil
}

const (
	employeeGetByEmailQuery = `
		SELECT id, email, name, role, created_at, updated_at
		FROM employees
		WHERE lower(email) = $1`

	employeeListQuery = `
		SELECT id, email, name, role, created_at, updated_at
		FROM employees
		ORDER BY email ASC
		LIMIT $1 OFFSET $2`
)
