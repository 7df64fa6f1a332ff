package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/leanchem/connect-api/internal/data/database"
	"github.com/leanchem/connect-api/internal/data/pgxutil"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
)

// StockRepo provides database operations for the stock movement
// ledger. Movements are append-only; on-hand levels are aggregates.
type StockRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewStockRepo creates a new StockRepo with real time provider.
func NewStockRepo(db *sql.DB) *StockRepo {
	return &StockRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewStockRepoWithTimeProvider creates a new StockRepo with a custom time provider (useful for tests).
func NewStockRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *StockRepo {
	return &StockRepo{DB: db, timeProvider: tp}
}

// Record appends a movement to the ledger. recordedBy is the acting
// employee's email.
func (r *StockRepo) Record(ctx context.Context, recordedBy string, req *model.CreateStockMovementRequest) (*model.StockMovement, error) {
	if req == nil {
		return nil, errors.New("create stock movement request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now().UTC()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	var out model.StockMovement
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO stock_movements (product_id, kind, quantity, reference, recorded_by, occurred_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, product_id, kind, quantity, reference, recorded_by, occurred_at, created_at
		`, req.ProductID, req.Kind, req.Quantity, req.Reference, recordedBy, occurredAt, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StockMovement])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves ledger entries with optional filters, newest first.
func (r *StockRepo) List(ctx context.Context, opts model.StockMovementsListOptions) ([]*model.StockMovement, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(stockMovementColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
		database.WithOrderBy("occurred_at", sortDirDesc),
	}
	if opts.ProductID != nil && strings.TrimSpace(*opts.ProductID) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("product_id", database.Equal, strings.TrimSpace(*opts.ProductID)),
		))
	}
	if opts.Kind != nil && strings.TrimSpace(*opts.Kind) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("kind", database.Equal, strings.ToLower(strings.TrimSpace(*opts.Kind))),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("stock_movements", queryOpts...))

	var rowsOut []model.StockMovement
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.StockMovement])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	res := make([]*model.StockMovement, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Level returns the aggregated on-hand quantity for a product.
func (r *StockRepo) Level(ctx context.Context, productID string) (*model.StockLevel, error) {
	var out model.StockLevel
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, stockLevelQuery, productID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StockLevel])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Levels returns aggregated on-hand quantities for all products with
// at least one movement.
func (r *StockRepo) Levels(ctx context.Context) ([]*model.StockLevel, error) {
	var rowsOut []model.StockLevel
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, stockLevelsQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.StockLevel])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	res := make([]*model.StockLevel, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

const (
	stockLevelQuery = `
		SELECT product_id, COALESCE(SUM(quantity), 0)::int AS on_hand
		FROM stock_movements
		WHERE product_id = $1
		GROUP BY product_id`

	stockLevelsQuery = `
		SELECT product_id, COALESCE(SUM(quantity), 0)::int AS on_hand
		FROM stock_movements
		GROUP BY product_id
		ORDER BY product_id`
)

func stockMovementColumns() []string {
	return []string{
		"id",
		"product_id",
		"kind",
		"quantity",
		"reference",
		"recorded_by",
		"occurred_at",
		"created_at",
	}
}
