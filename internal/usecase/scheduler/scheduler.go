package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

// DefaultPlusDays is the offset of the PLUS_DAYS milestone when none is configured
const DefaultPlusDays = 3

// Config holds the tunable parts of the payment plan
type Config struct {
	PlusDays int // Days between the deposit and the PLUS_DAYS milestone
}

// DefaultConfig returns the payment plan configuration used in production
func DefaultConfig() Config {
	return Config{PlusDays: DefaultPlusDays}
}

var hundred = decimal.NewFromInt(100)

// ResolveAnchor picks the date the payment plan is counted from.
// The site plan deposit date wins, then the product deposit date, then today.
func ResolveAnchor(sitePlan *domain.SitePlan, product *domain.ProductSnapshot, today time.Time) time.Time {
	if sitePlan != nil && sitePlan.DepositDate != nil {
		return domain.DateOf(*sitePlan.DepositDate)
	}
	if product != nil && product.DepositDate != nil {
		return domain.DateOf(*product.DepositDate)
	}
	return domain.DateOf(today)
}

// Generate builds the payment schedule of a product
// Logic:
//  1. Walk the fixed templates in order, computing each due date from the anchor
//  2. A deferrable installment whose due date is before today is not emitted;
//     its principal, VAT and bank amounts are carried forward
//  3. The first installment due on or after today absorbs the carried amounts,
//     and its label states the combined share
//  4. When every installment has elapsed, HANDOVER absorbs what is left
//  5. TITLE_DEED_NOTICE takes the rounding remainder so the price principal equals round(price)
//
// Safety: Generate is pure. The same inputs always produce the same schedule.
// A zero anchor falls back to today.
func Generate(
	product *domain.ProductSnapshot,
	anchor, today time.Time,
	rounder domain.Rounder,
	cfg Config,
) *domain.Schedule {
	today = domain.DateOf(today)
	if anchor.IsZero() {
		anchor = today
	} else {
		anchor = domain.DateOf(anchor)
	}

	plusDays := cfg.PlusDays
	if plusDays < 0 {
		plusDays = 0
	}

	b := builder{
		product:  product,
		rounder:  rounder,
		price:    product.PriceIncludeLandTax(),
		vat:      product.VATTax,
		plusDays: plusDays,
	}

	schedule := &domain.Schedule{
		ProductID:  product.ID,
		AnchorDate: anchor,
		Today:      today,
		Milestones: make([]domain.Milestone, 0, len(templates)),
	}

	var carry carried
	for _, tpl := range templates {
		milestone := b.build(tpl, anchor)

		if tpl.deferrable && milestone.Date.Before(today) {
			carry.add(tpl, milestone)
			continue
		}

		share := tpl.priceShare
		if (tpl.deferrable || tpl.collectsOverdue) && !carry.empty() {
			milestone.Principal = milestone.Principal.Add(carry.principal)
			milestone.VATAmount = milestone.VATAmount.Add(carry.vat)
			milestone.BankAmount = milestone.BankAmount.Add(carry.bank)
			milestone.Folded = carry.kinds
			share = share.Add(carry.share)
			carry = carried{}
		}

		milestone.Label = renderLabel(tpl.label, share, len(milestone.Folded))
		milestone.Principal = rounder.Round(milestone.Principal)
		milestone.VATAmount = rounder.Round(milestone.VATAmount)
		milestone.BankAmount = rounder.Round(milestone.BankAmount)
		milestone.Sequence = len(schedule.Milestones) + 1

		schedule.Milestones = append(schedule.Milestones, milestone)
	}

	return schedule
}

// builder computes the standalone amounts of each template.
// It tracks what has been scheduled so far, folded or not, so the remainder templates close the totals.
type builder struct {
	product  *domain.ProductSnapshot
	rounder  domain.Rounder
	price    decimal.Decimal
	vat      decimal.Decimal
	plusDays int

	scheduledPrice decimal.Decimal
	scheduledVAT   decimal.Decimal
}

func (b *builder) build(tpl milestoneTemplate, anchor time.Time) domain.Milestone {
	milestone := domain.Milestone{
		ProductID:  b.product.ID,
		Kind:       tpl.kind,
		Date:       b.dueDate(tpl.offset, anchor),
		Principal:  b.principal(tpl),
		VATAmount:  b.vatAmount(tpl),
		BankAmount: b.bankAmount(tpl),
		BankNote:   tpl.bankNote,
	}

	if tpl.priceBasis != basisMaintenanceFee {
		b.scheduledPrice = b.scheduledPrice.Add(milestone.Principal)
	}
	b.scheduledVAT = b.scheduledVAT.Add(milestone.VATAmount)

	return milestone
}

func (b *builder) dueDate(o offset, anchor time.Time) *time.Time {
	if o.undated {
		return nil
	}
	days := o.days
	if o.plusDays {
		days = b.plusDays
	}
	due := domain.AddMonths(anchor, o.months).AddDate(0, 0, days)
	return &due
}

func (b *builder) principal(tpl milestoneTemplate) decimal.Decimal {
	switch tpl.priceBasis {
	case basisDeposit:
		return b.rounder.Round(b.product.Deposit)
	case basisCumulativeShare:
		return b.share(b.price, tpl.priceShare).Sub(b.scheduledPrice)
	case basisMaintenanceFee:
		return b.rounder.Round(b.product.MaintenanceFee)
	case basisRemainder:
		return b.rounder.Round(b.price).Sub(b.scheduledPrice)
	default:
		return b.share(b.price, tpl.priceShare)
	}
}

func (b *builder) vatAmount(tpl milestoneTemplate) decimal.Decimal {
	if tpl.vatBasis == basisRemainder {
		return b.rounder.Round(b.vat).Sub(b.scheduledVAT)
	}
	return b.share(b.vat, tpl.vatShare)
}

func (b *builder) bankAmount(tpl milestoneTemplate) decimal.Decimal {
	amount := b.price.Mul(tpl.bankPriceShare).Div(hundred).
		Add(b.vat.Mul(tpl.bankVATShare).Div(hundred))
	if tpl.bankIncludesMaintenance {
		amount = amount.Add(b.product.MaintenanceFee)
	}
	return b.rounder.Round(amount)
}

func (b *builder) share(base, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return decimal.Zero
	}
	return b.rounder.Round(base.Mul(percent).Div(hundred))
}

// carried accumulates the elapsed installments waiting for a milestone to absorb them
type carried struct {
	principal decimal.Decimal
	vat       decimal.Decimal
	bank      decimal.Decimal
	share     decimal.Decimal
	kinds     []domain.MilestoneKind
}

func (c *carried) add(tpl milestoneTemplate, m domain.Milestone) {
	c.principal = c.principal.Add(m.Principal)
	c.vat = c.vat.Add(m.VATAmount)
	c.bank = c.bank.Add(m.BankAmount)
	c.share = c.share.Add(tpl.priceShare)
	c.kinds = append(c.kinds, tpl.kind)
}

func (c *carried) empty() bool {
	return len(c.kinds) == 0
}

func renderLabel(format string, share decimal.Decimal, folded int) string {
	label := format
	if strings.Contains(format, "%s") {
		label = fmt.Sprintf(format, share.String())
	}
	if folded > 0 {
		label += fmt.Sprintf(" (incl. %d overdue installments)", folded)
	}
	return label
}
