package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

type milestoneRow struct {
	ID          uuid.UUID       `db:"id"`
	ProductID   uuid.UUID       `db:"product_id"`
	Sequence    int             `db:"sequence"`
	Kind        string          `db:"kind"`
	DueDate     sql.NullString  `db:"due_date"`
	Label       string          `db:"label"`
	Principal   decimal.Decimal `db:"principal"`
	VATAmount   decimal.Decimal `db:"vat_amount"`
	BankAmount  decimal.Decimal `db:"bank_amount"`
	BankNote    string          `db:"bank_note"`
	FoldedKinds string          `db:"folded_kinds"`
}

// scheduleRepository implements domain.ScheduleRepository
type scheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new payment schedule repository
func NewScheduleRepository(db *DB) domain.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Replace discards the persisted milestones of the product and inserts the new ones
// in a single transaction
func (r *scheduleRepository) Replace(ctx context.Context, schedule *domain.Schedule) error {
	insert := `
		INSERT INTO payment_milestones (id, product_id, sequence, kind, due_date, label,
		                                principal, vat_amount, bank_amount, bank_note, folded_kinds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.withinTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM payment_milestones WHERE product_id = ?`), schedule.ProductID); err != nil {
			return fmt.Errorf("failed to delete milestones: %w", err)
		}

		stmt := tx.Rebind(insert)
		for i := range schedule.Milestones {
			m := &schedule.Milestones[i]
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.ProductID = schedule.ProductID

			_, err := tx.ExecContext(ctx, stmt,
				m.ID,
				m.ProductID,
				m.Sequence,
				string(m.Kind),
				dateValue(m.Date),
				m.Label,
				m.Principal,
				m.VATAmount,
				m.BankAmount,
				m.BankNote,
				joinKinds(m.Folded),
			)
			if err != nil {
				return fmt.Errorf("failed to insert milestone %s: %w", m.Kind, err)
			}
		}
		return nil
	})
}

// GetByProductID retrieves the persisted milestones of a product in sequence order
func (r *scheduleRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]domain.Milestone, error) {
	query := r.db.Rebind(`
		SELECT id, product_id, sequence, kind, due_date, label,
		       principal, vat_amount, bank_amount, bank_note, folded_kinds
		FROM payment_milestones
		WHERE product_id = ?
		ORDER BY sequence ASC
	`)

	var rows []milestoneRow
	if err := r.db.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, fmt.Errorf("failed to get milestones: %w", err)
	}

	milestones := make([]domain.Milestone, 0, len(rows))
	for _, row := range rows {
		date, err := parseDate(row.DueDate)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, domain.Milestone{
			ID:         row.ID,
			ProductID:  row.ProductID,
			Sequence:   row.Sequence,
			Kind:       domain.MilestoneKind(row.Kind),
			Date:       date,
			Label:      row.Label,
			Principal:  row.Principal,
			VATAmount:  row.VATAmount,
			BankAmount: row.BankAmount,
			BankNote:   row.BankNote,
			Folded:     splitKinds(row.FoldedKinds),
		})
	}
	return milestones, nil
}

func joinKinds(kinds []domain.MilestoneKind) string {
	parts := make([]string, len(kinds))
	for i, kind := range kinds {
		parts[i] = string(kind)
	}
	return strings.Join(parts, ",")
}

func splitKinds(s string) []domain.MilestoneKind {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	kinds := make([]domain.MilestoneKind, len(parts))
	for i, part := range parts {
		kinds[i] = domain.MilestoneKind(part)
	}
	return kinds
}
