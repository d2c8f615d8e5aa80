package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSnapshot is a read-only view of the priceable attributes of one property.
// It is owned by the record store; pricing and scheduling only read it.
type ProductSnapshot struct {
	ID         uuid.UUID
	Name       string
	SitePlanID *uuid.UUID // NULL when the property is not drawn on a site plan

	PriceExcludeLandTax decimal.Decimal
	LandTax             decimal.Decimal
	VATTax              decimal.Decimal
	MaintenanceFee      decimal.Decimal
	ManagementFee       decimal.Decimal // Monthly management fee per m²
	Deposit             decimal.Decimal
	DepositDate         *time.Time
	Area                decimal.Decimal // Land area in m²

	ListPriceOverride decimal.NullDecimal // Manually entered list price, wins over the derived one

	SelectedDiscountIDs []uuid.UUID // Selection order is kept for audit display
}

// PriceIncludeLandTax is the tax-inclusive price, the base of every percentage share.
// There is no inverse: PriceExcludeLandTax cannot be recovered from it.
func (p *ProductSnapshot) PriceIncludeLandTax() decimal.Decimal {
	return p.PriceExcludeLandTax.Add(p.LandTax)
}

// ListPrice is the tax-inclusive price plus VAT and maintenance fee,
// unless a list price override has been entered
func (p *ProductSnapshot) ListPrice() decimal.Decimal {
	if p.ListPriceOverride.Valid {
		return p.ListPriceOverride.Decimal
	}
	return p.PriceIncludeLandTax().Add(p.VATTax).Add(p.MaintenanceFee)
}

// SitePlan is a master plan image on which properties are drawn
type SitePlan struct {
	ID          uuid.UUID
	Name        string
	DepositDate *time.Time // Project-wide deposit date, preferred over the product one
	Active      bool
}
