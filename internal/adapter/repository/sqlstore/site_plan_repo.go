package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

type sitePlanRow struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	DepositDate sql.NullString `db:"deposit_date"`
	Active      bool           `db:"active"`
}

// sitePlanRepository implements domain.SitePlanRepository
type sitePlanRepository struct {
	db *DB
}

// NewSitePlanRepository creates a new site plan repository
func NewSitePlanRepository(db *DB) domain.SitePlanRepository {
	return &sitePlanRepository{db: db}
}

// GetByID retrieves a site plan by its ID
func (r *sitePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SitePlan, error) {
	query := r.db.Rebind(`SELECT id, name, deposit_date, active FROM site_plans WHERE id = ?`)

	var row sitePlanRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("site plan %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site plan: %w", err)
	}

	depositDate, err := parseDate(row.DepositDate)
	if err != nil {
		return nil, err
	}

	return &domain.SitePlan{
		ID:          row.ID,
		Name:        row.Name,
		DepositDate: depositDate,
		Active:      row.Active,
	}, nil
}

// Create creates a new site plan
func (r *sitePlanRepository) Create(ctx context.Context, plan *domain.SitePlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	query := r.db.Rebind(`INSERT INTO site_plans (id, name, deposit_date, active) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, plan.ID, plan.Name, dateValue(plan.DepositDate), plan.Active); err != nil {
		return fmt.Errorf("failed to create site plan: %w", err)
	}
	return nil
}
