package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/leanchem/connect-api/internal/data/database"
	"github.com/leanchem/connect-api/internal/data/pgxutil"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

// DealRepo provides database operations for sales pipeline deals.
type DealRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewDealRepo creates a new DealRepo with real time provider.
func NewDealRepo(db *sql.DB) *DealRepo {
	return &DealRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewDealRepoWithTimeProvider creates a new DealRepo with a custom time provider (useful for tests).
func NewDealRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *DealRepo {
	return &DealRepo{DB: db, timeProvider: tp}
}

// Create inserts a new deal. ownerEmail is the acting employee's email.
func (r *DealRepo) Create(ctx context.Context, ownerEmail string, req *model.CreateDealRequest) (*model.Deal, error) {
	if req == nil {
		return nil, errors.New("create deal request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Deal
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO deals (customer_id, product_id, stage, amount, currency, owner_email, expected_close, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING id, customer_id, product_id, stage, amount, currency, owner_email, expected_close, created_at, updated_at
		`, req.CustomerID, req.ProductID, req.Stage, req.Amount, req.Currency, ownerEmail, req.ExpectedClose, createdAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Deal])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a deal by ID.
func (r *DealRepo) GetByID(ctx context.Context, id string) (*model.Deal, error) {
	var out model.Deal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, dealGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Deal])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves deals with optional filters.
func (r *DealRepo) List(ctx context.Context, opts model.DealsListOptions) ([]*model.Deal, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(dealColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
		database.WithOrderBy("created_at", sortDirDesc),
	}
	if opts.CustomerID != nil && strings.TrimSpace(*opts.CustomerID) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("customer_id", database.Equal, strings.TrimSpace(*opts.CustomerID)),
		))
	}
	if opts.Stage != nil && strings.TrimSpace(*opts.Stage) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("stage", database.Equal, strings.ToLower(strings.TrimSpace(*opts.Stage))),
		))
	}
	if opts.Owner != nil && strings.TrimSpace(*opts.Owner) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("owner_email", database.Equal, model.NormalizeEmail(*opts.Owner)),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("deals", queryOpts...))

	var rowsOut []model.Deal
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Deal])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	res := make([]*model.Deal, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a deal.
func (r *DealRepo) Update(ctx context.Context, id string, req model.UpdateDealRequest) (*model.Deal, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setParts := make([]string, 0, 6)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.ProductID != nil {
		if strings.TrimSpace(*req.ProductID) == "" {
			setParts = append(setParts, "product_id = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("product_id = $%d", nextIdx()))
			args = append(args, *req.ProductID)
		}
	}
	if req.Stage != nil {
		setParts = append(setParts, fmt.Sprintf("stage = $%d", nextIdx()))
		args = append(args, *req.Stage)
	}
	if req.Amount != nil {
		setParts = append(setParts, fmt.Sprintf("amount = $%d", nextIdx()))
		args = append(args, *req.Amount)
	}
	if req.Currency != nil {
		setParts = append(setParts, fmt.Sprintf("currency = $%d", nextIdx()))
		args = append(args, *req.Currency)
	}
	if req.ExpectedClose != nil {
		setParts = append(setParts, fmt.Sprintf("expected_close = $%d", nextIdx()))
		args = append(args, *req.ExpectedClose)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE deals SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING id, customer_id, product_id, stage, amount, currency, owner_email, expected_close, created_at, updated_at"

	var out model.Deal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Deal])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete deletes a deal by ID.
func (r *DealRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM deals WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return rows > 0, nil
}

const dealGetByIDQuery = `
	SELECT id, customer_id, product_id, stage, amount, currency, owner_email, expected_close, created_at, updated_at
	FROM deals
	WHERE id = $1`

func dealColumns() []string {
	return []string{
		"id",
		"customer_id",
		"product_id",
		"stage",
		"amount",
		"currency",
		"owner_email",
		"expected_close",
		"created_at",
		"updated_at",
	}
}
