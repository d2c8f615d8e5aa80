package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Compute evaluates a discount definition against a product snapshot and returns the deduction
// Logic:
//   - PERCENT: list price * value / 100
//   - FIXED_AMOUNT: value verbatim
//   - FORMULA: value is a multiplier of the metric picked by FormulaKind
//     (management fee * area, maintenance fee * area, or the value itself for CUSTOM)
//
// Returns an error for malformed or inactive definitions; callers skip those instead of failing.
func Compute(d *domain.DiscountDefinition, product *domain.ProductSnapshot) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, errors.New("discount definition is missing")
	}

	if err := d.Validate(); err != nil {
		return decimal.Zero, err
	}

	if !d.Active {
		return decimal.Zero, fmt.Errorf("discount %q is not active", d.Name)
	}

	switch d.Kind {
	case domain.DiscountKindPercent:
		return product.ListPrice().Mul(d.Value).Div(hundred), nil
	case domain.DiscountKindFixedAmount:
		return d.Value, nil
	case domain.DiscountKindFormula:
		return computeFormula(d, product), nil
	}

	// Validate already rejected every other kind
	return decimal.Zero, fmt.Errorf("unsupported discount kind %s", d.Kind)
}

func computeFormula(d *domain.DiscountDefinition, product *domain.ProductSnapshot) decimal.Decimal {
	switch d.FormulaKind {
	case domain.FormulaKindManagementFeeArea:
		return product.ManagementFee.Mul(product.Area).Mul(d.Value)
	case domain.FormulaKindMaintenanceFeeArea:
		return product.MaintenanceFee.Mul(product.Area).Mul(d.Value)
	default:
		return d.Value
	}
}
