package scheduler

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

// amountBasis selects how a template turns the product figures into an amount
type amountBasis int

const (
	// basisShare is share% of the tax-inclusive price
	basisShare amountBasis = iota
	// basisDeposit is the flat deposit amount
	basisDeposit
	// basisCumulativeShare tops the scheduled price up to share% of the tax-inclusive price
	basisCumulativeShare
	// basisMaintenanceFee is the maintenance fee, collected on top of the price
	basisMaintenanceFee
	// basisRemainder is whatever is left of the rounded price (or VAT)
	basisRemainder
)

// offset is the due date of a template relative to the anchor date
type offset struct {
	months   int
	days     int
	plusDays bool // days come from Config.PlusDays
	undated  bool
}

// milestoneTemplate is one row of the fixed payment plan
type milestoneTemplate struct {
	kind   domain.MilestoneKind
	offset offset

	priceBasis amountBasis
	priceShare decimal.Decimal // Percent of the tax-inclusive price
	vatBasis   amountBasis
	vatShare   decimal.Decimal // Percent of the VAT

	bankPriceShare          decimal.Decimal
	bankVATShare            decimal.Decimal
	bankIncludesMaintenance bool

	// deferrable templates are folded forward when their due date has elapsed
	deferrable bool
	// collectsOverdue templates absorb whatever deferrable amounts are still pending
	collectsOverdue bool

	label    string // %s is replaced by the effective price share
	bankNote string
}

func pct(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

const (
	noteCustomer20   = "Customer 20%"
	noteBank30       = "Bank 30%, interest-free with principal grace"
	noteBank35       = "Bank 35%"
	noteCustomer10   = "Customer 10% + maintenance fund"
	noteBank5        = "Bank 5%"
	labelInstallment = "%s%% + matching VAT"
)

// templates is the payment plan, ordered by due date.
// Percentages of the price add up to 100 (20 + 6x5 + 45 + 5); VAT shares add up to 100 (20 + 6x5 + 50).
var templates = [...]milestoneTemplate{
	{
		kind:           domain.MilestoneDeposit,
		offset:         offset{},
		priceBasis:     basisDeposit,
		vatBasis:       basisShare,
		bankPriceShare: pct(20),
		bankVATShare:   pct(20),
		label:          "Deposit",
		bankNote:       noteCustomer20,
	},
	{
		kind:       domain.MilestonePlusDays,
		offset:     offset{plusDays: true},
		priceBasis: basisCumulativeShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		label:      "%s%%",
		bankNote:   noteCustomer20,
	},
	{
		kind:       domain.MilestoneContractSigning,
		offset:     offset{months: 1},
		priceBasis: basisCumulativeShare,
		priceShare: pct(20),
		vatBasis:   basisShare,
		vatShare:   pct(20),
		label:      "Up to %s%% + VAT",
		bankNote:   noteCustomer20,
	},
	{
		kind:           domain.MilestoneInstallment4,
		offset:         offset{months: 2},
		priceBasis:     basisShare,
		priceShare:     pct(5),
		vatBasis:       basisShare,
		vatShare:       pct(5),
		bankPriceShare: pct(30),
		bankVATShare:   pct(30),
		deferrable:     true,
		label:          labelInstallment,
		bankNote:       noteBank30,
	},
	{
		kind:       domain.MilestoneInstallment5,
		offset:     offset{months: 4},
		priceBasis: basisShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		vatShare:   pct(5),
		deferrable: true,
		label:      labelInstallment,
		bankNote:   noteBank30,
	},
	{
		kind:       domain.MilestoneInstallment6,
		offset:     offset{months: 6},
		priceBasis: basisShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		vatShare:   pct(5),
		deferrable: true,
		label:      labelInstallment,
		bankNote:   noteBank30,
	},
	{
		kind:       domain.MilestoneInstallment7,
		offset:     offset{months: 9},
		priceBasis: basisShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		vatShare:   pct(5),
		deferrable: true,
		label:      labelInstallment,
		bankNote:   noteBank30,
	},
	{
		kind:       domain.MilestoneInstallment8,
		offset:     offset{months: 12},
		priceBasis: basisShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		vatShare:   pct(5),
		deferrable: true,
		label:      labelInstallment,
		bankNote:   noteBank30,
	},
	{
		kind:       domain.MilestoneInstallment9,
		offset:     offset{months: 15},
		priceBasis: basisShare,
		priceShare: pct(5),
		vatBasis:   basisShare,
		vatShare:   pct(5),
		deferrable: true,
		label:      labelInstallment,
		bankNote:   noteBank30,
	},
	{
		kind:            domain.MilestoneHandover,
		offset:          offset{months: 18},
		priceBasis:      basisShare,
		priceShare:      pct(45),
		vatBasis:        basisRemainder,
		vatShare:        pct(50),
		bankPriceShare:  pct(35),
		bankVATShare:    pct(40),
		collectsOverdue: true,
		label:           "%s%% + remaining VAT",
		bankNote:        noteBank35,
	},
	{
		kind:                    domain.MilestoneMaintenanceFund,
		offset:                  offset{months: 18},
		priceBasis:              basisMaintenanceFee,
		vatBasis:                basisShare,
		bankPriceShare:          pct(10),
		bankVATShare:            pct(10),
		bankIncludesMaintenance: true,
		label:                   "Maintenance fund",
		bankNote:                noteCustomer10,
	},
	{
		kind:           domain.MilestoneTitleDeedNotice,
		offset:         offset{undated: true},
		priceBasis:     basisRemainder,
		priceShare:     pct(5),
		vatBasis:       basisShare,
		bankPriceShare: pct(5),
		label:          "%s%%",
		bankNote:       noteBank5,
	},
}
