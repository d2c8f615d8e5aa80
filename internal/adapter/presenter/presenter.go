// Package presenter renders price views, schedules and catalog entries as plain maps.
// The gRPC adapter wraps them in structpb, the HTTP adapter and the CLI encode them as JSON.
// Money is always rendered as a decimal string.
package presenter

import (
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
)

// PriceView renders a derived price view
func PriceView(view *pricing.PriceView) map[string]interface{} {
	discounts := make([]interface{}, 0, len(view.Discounts))
	for _, d := range view.Discounts {
		discounts = append(discounts, map[string]interface{}{
			"id":     d.ID.String(),
			"name":   d.Name,
			"amount": d.Amount.String(),
		})
	}

	skipped := make([]interface{}, 0, len(view.Skipped))
	for _, d := range view.Skipped {
		skipped = append(skipped, map[string]interface{}{
			"id":     d.ID.String(),
			"reason": d.Reason,
		})
	}

	return map[string]interface{}{
		"product_id":             view.ProductID.String(),
		"price_include_land_tax": view.PriceIncludeLandTax.String(),
		"list_price":             view.ListPrice.String(),
		"price_per_m2":           view.PricePerM2.String(),
		"discount_total":         view.DiscountTotal.String(),
		"final_price":            view.FinalPrice.String(),
		"discounts":              discounts,
		"skipped_discounts":      skipped,
	}
}

// Milestone renders a single payment milestone
func Milestone(m domain.Milestone) map[string]interface{} {
	folded := make([]interface{}, 0, len(m.Folded))
	for _, kind := range m.Folded {
		folded = append(folded, string(kind))
	}

	var date interface{}
	if m.Date != nil {
		date = m.Date.Format(domain.DateLayout)
	}

	return map[string]interface{}{
		"sequence":    m.Sequence,
		"kind":        string(m.Kind),
		"date":        date,
		"label":       m.Label,
		"principal":   m.Principal.String(),
		"vat_amount":  m.VATAmount.String(),
		"total":       m.Total().String(),
		"bank_amount": m.BankAmount.String(),
		"bank_note":   m.BankNote,
		"folded":      folded,
	}
}

// Schedule renders a payment schedule with its totals
func Schedule(schedule *domain.Schedule) map[string]interface{} {
	milestones := make([]interface{}, 0, len(schedule.Milestones))
	for _, m := range schedule.Milestones {
		milestones = append(milestones, Milestone(m))
	}

	out := map[string]interface{}{
		"product_id":      schedule.ProductID.String(),
		"total_principal": schedule.TotalPrincipal().String(),
		"total_vat":       schedule.TotalVAT().String(),
		"milestones":      milestones,
	}
	if !schedule.AnchorDate.IsZero() {
		out["anchor_date"] = schedule.AnchorDate.Format(domain.DateLayout)
	}
	if !schedule.Today.IsZero() {
		out["today"] = schedule.Today.Format(domain.DateLayout)
	}
	return out
}

// Discount renders a catalog entry
func Discount(d *domain.DiscountDefinition) map[string]interface{} {
	out := map[string]interface{}{
		"id":      d.ID.String(),
		"name":    d.Name,
		"kind":    string(d.Kind),
		"value":   d.Value.String(),
		"min_qty": d.MinQty,
		"active":  d.Active,
	}
	if d.Kind == domain.DiscountKindFormula {
		out["formula_kind"] = string(d.FormulaKind)
	}
	return out
}

// Discounts renders a list of catalog entries
func Discounts(discounts []*domain.DiscountDefinition) []interface{} {
	out := make([]interface{}, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, Discount(d))
	}
	return out
}
