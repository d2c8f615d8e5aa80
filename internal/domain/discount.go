package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind represents how a discount value is interpreted
type DiscountKind string

const (
	DiscountKindPercent     DiscountKind = "PERCENT"
	DiscountKindFixedAmount DiscountKind = "FIXED_AMOUNT"
	DiscountKindFormula     DiscountKind = "FORMULA"
)

// FormulaKind selects the base metric of a FORMULA discount
type FormulaKind string

const (
	FormulaKindManagementFeeArea  FormulaKind = "MANAGEMENT_FEE_AREA"
	FormulaKindMaintenanceFeeArea FormulaKind = "MAINTENANCE_FEE_AREA"
	FormulaKindCustom             FormulaKind = "CUSTOM"
)

// DiscountDefinition represents a discount program of the catalog.
// It is immutable configuration data; products reference it by ID.
type DiscountDefinition struct {
	ID          uuid.UUID
	Name        string
	Kind        DiscountKind
	Value       decimal.Decimal // Percentage (0-100) for PERCENT, amount for FIXED_AMOUNT, multiplier for FORMULA
	FormulaKind FormulaKind     // Only meaningful for FORMULA
	MinQty      int             // Minimum purchase quantity for the program to apply
	Active      bool
}

// Validate ensures the discount definition adheres to domain rules
// Returns an error if validation fails
func (d *DiscountDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("discount name cannot be empty")
	}

	if d.Value.LessThan(decimal.Zero) {
		return errors.New("discount value cannot be negative")
	}

	if d.MinQty < 0 {
		return errors.New("discount minimum quantity cannot be negative")
	}

	switch d.Kind {
	case DiscountKindPercent:
		if d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return errors.New("PERCENT discount value must be between 0 and 100")
		}
	case DiscountKindFixedAmount:
	case DiscountKindFormula:
		if d.FormulaKind != FormulaKindManagementFeeArea &&
			d.FormulaKind != FormulaKindMaintenanceFeeArea &&
			d.FormulaKind != FormulaKindCustom {
			return errors.New("FORMULA discount must use MANAGEMENT_FEE_AREA, MAINTENANCE_FEE_AREA, or CUSTOM")
		}
	default:
		return errors.New("discount kind must be PERCENT, FIXED_AMOUNT, or FORMULA")
	}

	return nil
}
