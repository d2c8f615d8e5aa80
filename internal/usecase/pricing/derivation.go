package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/usecase/discount"
)

// AppliedDiscount is one deduction taken off the list price
type AppliedDiscount struct {
	ID     uuid.UUID
	Name   string
	Amount decimal.Decimal
}

// SkippedDiscount is a selected discount that could not be evaluated
type SkippedDiscount struct {
	ID     uuid.UUID
	Reason string
}

// PriceView is the derived price composition of one product
type PriceView struct {
	ProductID           uuid.UUID
	PriceIncludeLandTax decimal.Decimal
	ListPrice           decimal.Decimal
	PricePerM2          decimal.Decimal
	DiscountTotal       decimal.Decimal
	FinalPrice          decimal.Decimal
	Discounts           []AppliedDiscount // Selection order
	Skipped             []SkippedDiscount // Selection order
}

// Derive composes the tax-inclusive price, list price, unit price and final price of a product
// Logic:
//  1. price_include_land_tax = price_exclude_land_tax + land_tax
//  2. list_price = price_include_land_tax + vat_tax + maintenance_fee (or the override)
//  3. price_per_m2 = list_price / area, zero when area is not positive
//  4. final_price = list_price - sum of the selected discounts, evaluated in selection order
//
// Selected discounts missing from catalog, malformed or inactive are reported in Skipped
// and excluded from the sum. Derive never fails.
func Derive(
	product *domain.ProductSnapshot,
	catalog map[uuid.UUID]*domain.DiscountDefinition,
	rounder domain.Rounder,
) *PriceView {
	listPrice := product.ListPrice()

	view := &PriceView{
		ProductID:           product.ID,
		PriceIncludeLandTax: product.PriceIncludeLandTax(),
		ListPrice:           listPrice,
		PricePerM2:          decimal.Zero,
		DiscountTotal:       decimal.Zero,
		Discounts:           make([]AppliedDiscount, 0, len(product.SelectedDiscountIDs)),
		Skipped:             make([]SkippedDiscount, 0),
	}

	if product.Area.GreaterThan(decimal.Zero) {
		view.PricePerM2 = rounder.Round(listPrice.Div(product.Area))
	}

	for _, id := range product.SelectedDiscountIDs {
		definition, ok := catalog[id]
		if !ok {
			view.Skipped = append(view.Skipped, SkippedDiscount{ID: id, Reason: "discount not found in catalog"})
			continue
		}

		amount, err := discount.Compute(definition, product)
		if err != nil {
			view.Skipped = append(view.Skipped, SkippedDiscount{ID: id, Reason: err.Error()})
			continue
		}

		amount = rounder.Round(amount)
		view.Discounts = append(view.Discounts, AppliedDiscount{
			ID:     id,
			Name:   definition.Name,
			Amount: amount,
		})
		view.DiscountTotal = view.DiscountTotal.Add(amount)
	}

	view.FinalPrice = listPrice.Sub(view.DiscountTotal)

	return view
}
