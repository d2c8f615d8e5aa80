package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

const discountColumns = `id, name, kind, value, formula_kind, min_qty, active`

type discountRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Kind        string          `db:"kind"`
	Value       decimal.Decimal `db:"value"`
	FormulaKind string          `db:"formula_kind"`
	MinQty      int             `db:"min_qty"`
	Active      bool            `db:"active"`
}

func (row discountRow) toDomain() *domain.DiscountDefinition {
	return &domain.DiscountDefinition{
		ID:          row.ID,
		Name:        row.Name,
		Kind:        domain.DiscountKind(row.Kind),
		Value:       row.Value,
		FormulaKind: domain.FormulaKind(row.FormulaKind),
		MinQty:      row.MinQty,
		Active:      row.Active,
	}
}

// discountRepository implements domain.DiscountRepository
type discountRepository struct {
	db *DB
}

// NewDiscountRepository creates a new discount catalog repository
func NewDiscountRepository(db *DB) domain.DiscountRepository {
	return &discountRepository{db: db}
}

// GetByID retrieves a discount definition by its ID
func (r *discountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DiscountDefinition, error) {
	query := r.db.Rebind(`SELECT ` + discountColumns + ` FROM discount_configs WHERE id = ?`)

	var row discountRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("discount %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	return row.toDomain(), nil
}

// GetByIDs retrieves the discount definitions matching the given IDs
func (r *discountRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.DiscountDefinition, error) {
	if len(ids) == 0 {
		return []*domain.DiscountDefinition{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+discountColumns+` FROM discount_configs WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build discount query: %w", err)
	}

	var rows []discountRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get discounts: %w", err)
	}

	discounts := make([]*domain.DiscountDefinition, 0, len(rows))
	for _, row := range rows {
		discounts = append(discounts, row.toDomain())
	}
	return discounts, nil
}

// List retrieves the catalog ordered by name
func (r *discountRepository) List(ctx context.Context, activeOnly bool) ([]*domain.DiscountDefinition, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_configs`
	var args []interface{}
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	var rows []discountRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}

	discounts := make([]*domain.DiscountDefinition, 0, len(rows))
	for _, row := range rows {
		discounts = append(discounts, row.toDomain())
	}
	return discounts, nil
}

// Create creates a new discount definition
// Validates the definition before inserting
func (r *discountRepository) Create(ctx context.Context, discount *domain.DiscountDefinition) error {
	if err := discount.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}

	query := r.db.Rebind(`INSERT INTO discount_configs (` + discountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		discount.ID,
		discount.Name,
		string(discount.Kind),
		discount.Value,
		string(discount.FormulaKind),
		discount.MinQty,
		discount.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create discount: %w", err)
	}
	return nil
}
