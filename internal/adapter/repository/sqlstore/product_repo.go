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

type productRow struct {
	ID                  uuid.UUID           `db:"id"`
	Name                string              `db:"name"`
	SitePlanID          uuid.NullUUID       `db:"site_plan_id"`
	PriceExcludeLandTax decimal.Decimal     `db:"price_exclude_land_tax"`
	LandTax             decimal.Decimal     `db:"land_tax"`
	VATTax              decimal.Decimal     `db:"vat_tax"`
	MaintenanceFee      decimal.Decimal     `db:"maintenance_fee"`
	ManagementFee       decimal.Decimal     `db:"management_fee"`
	Deposit             decimal.Decimal     `db:"deposit"`
	DepositDate         sql.NullString      `db:"deposit_date"`
	Area                decimal.Decimal     `db:"area"`
	ListPriceOverride   decimal.NullDecimal `db:"list_price_override"`
}

// productRepository implements domain.ProductRepository
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) domain.ProductRepository {
	return &productRepository{db: db}
}

// GetByID retrieves a product snapshot with its discount selection in selection order
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductSnapshot, error) {
	query := r.db.Rebind(`
		SELECT id, name, site_plan_id, price_exclude_land_tax, land_tax, vat_tax,
		       maintenance_fee, management_fee, deposit, deposit_date, area, list_price_override
		FROM products
		WHERE id = ?
	`)

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	depositDate, err := parseDate(row.DepositDate)
	if err != nil {
		return nil, err
	}

	selected := []uuid.UUID{}
	selectedQuery := r.db.Rebind(`SELECT discount_id FROM product_discounts WHERE product_id = ? ORDER BY position ASC`)
	if err := r.db.SelectContext(ctx, &selected, selectedQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get selected discounts: %w", err)
	}

	product := &domain.ProductSnapshot{
		ID:                  row.ID,
		Name:                row.Name,
		PriceExcludeLandTax: row.PriceExcludeLandTax,
		LandTax:             row.LandTax,
		VATTax:              row.VATTax,
		MaintenanceFee:      row.MaintenanceFee,
		ManagementFee:       row.ManagementFee,
		Deposit:             row.Deposit,
		DepositDate:         depositDate,
		Area:                row.Area,
		ListPriceOverride:   row.ListPriceOverride,
		SelectedDiscountIDs: selected,
	}
	if row.SitePlanID.Valid {
		planID := row.SitePlanID.UUID
		product.SitePlanID = &planID
	}

	return product, nil
}

// Create creates a new product together with its discount selection
func (r *productRepository) Create(ctx context.Context, product *domain.ProductSnapshot) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	var sitePlanID uuid.NullUUID
	if product.SitePlanID != nil {
		sitePlanID = uuid.NullUUID{UUID: *product.SitePlanID, Valid: true}
	}

	query := `
		INSERT INTO products (id, name, site_plan_id, price_exclude_land_tax, land_tax, vat_tax,
		                      maintenance_fee, management_fee, deposit, deposit_date, area, list_price_override)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.withinTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(query),
			product.ID,
			product.Name,
			sitePlanID,
			product.PriceExcludeLandTax,
			product.LandTax,
			product.VATTax,
			product.MaintenanceFee,
			product.ManagementFee,
			product.Deposit,
			dateValue(product.DepositDate),
			product.Area,
			product.ListPriceOverride,
		)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return insertSelection(ctx, tx, product.ID, product.SelectedDiscountIDs)
	})
}

// SetSelectedDiscounts replaces the discount selection of a product
func (r *productRepository) SetSelectedDiscounts(ctx context.Context, productID uuid.UUID, discountIDs []uuid.UUID) error {
	return r.db.withinTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT 1 FROM products WHERE id = ?`), productID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM product_discounts WHERE product_id = ?`), productID); err != nil {
			return fmt.Errorf("failed to clear discount selection: %w", err)
		}
		return insertSelection(ctx, tx, productID, discountIDs)
	})
}

func insertSelection(ctx context.Context, tx *sqlx.Tx, productID uuid.UUID, discountIDs []uuid.UUID) error {
	query := tx.Rebind(`INSERT INTO product_discounts (product_id, discount_id, position) VALUES (?, ?, ?)`)
	for position, discountID := range discountIDs {
		if _, err := tx.ExecContext(ctx, query, productID, discountID, position); err != nil {
			return fmt.Errorf("failed to select discount %s: %w", discountID, err)
		}
	}
	return nil
}
