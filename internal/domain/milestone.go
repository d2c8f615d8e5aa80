package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MilestoneKind identifies one of the fixed payment plan milestones
type MilestoneKind string

const (
	MilestoneDeposit         MilestoneKind = "DEPOSIT"
	MilestonePlusDays        MilestoneKind = "PLUS_DAYS"
	MilestoneContractSigning MilestoneKind = "CONTRACT_SIGNING"
	MilestoneInstallment4    MilestoneKind = "INSTALLMENT_4"
	MilestoneInstallment5    MilestoneKind = "INSTALLMENT_5"
	MilestoneInstallment6    MilestoneKind = "INSTALLMENT_6"
	MilestoneInstallment7    MilestoneKind = "INSTALLMENT_7"
	MilestoneInstallment8    MilestoneKind = "INSTALLMENT_8"
	MilestoneInstallment9    MilestoneKind = "INSTALLMENT_9"
	MilestoneHandover        MilestoneKind = "HANDOVER"
	MilestoneMaintenanceFund MilestoneKind = "MAINTENANCE_FUND"
	MilestoneTitleDeedNotice MilestoneKind = "TITLE_DEED_NOTICE"
)

// Milestone represents one scheduled payment event of a property sale
type Milestone struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Sequence   int // Emission order, starting at 1
	Kind       MilestoneKind
	Date       *time.Time // NULL only for TITLE_DEED_NOTICE
	Label      string     // States the actual (consolidated) share
	Principal  decimal.Decimal
	VATAmount  decimal.Decimal
	BankAmount decimal.Decimal // Portion assumed to be covered by the buyer's bank loan
	BankNote   string
	Folded     []MilestoneKind // Elapsed milestones whose amounts were consolidated into this one
}

// Total is the amount due at this milestone, VAT included
func (m *Milestone) Total() decimal.Decimal {
	return m.Principal.Add(m.VATAmount)
}

// Schedule is the ordered payment plan of one product.
// It is always regenerated as a whole, never patched.
type Schedule struct {
	ProductID  uuid.UUID
	AnchorDate time.Time
	Today      time.Time
	Milestones []Milestone
}

// TotalPrincipal sums the principal of every milestone
func (s *Schedule) TotalPrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Milestones {
		total = total.Add(m.Principal)
	}
	return total
}

// PricePrincipal sums the principal paid towards the tax-inclusive price.
// The maintenance fund is collected on top of the price and is left out.
func (s *Schedule) PricePrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Milestones {
		if m.Kind == MilestoneMaintenanceFund {
			continue
		}
		total = total.Add(m.Principal)
	}
	return total
}

// TotalVAT sums the VAT of every milestone
func (s *Schedule) TotalVAT() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Milestones {
		total = total.Add(m.VATAmount)
	}
	return total
}

// Validate ensures the schedule adheres to domain rules
// Returns an error if validation fails
// CRITICAL: dates never go backwards, each kind appears once (folded or standalone),
// and the undated TITLE_DEED_NOTICE closes the schedule
func (s *Schedule) Validate() error {
	if len(s.Milestones) == 0 {
		return errors.New("schedule must have at least one milestone")
	}

	seen := make(map[MilestoneKind]bool)
	var previous *time.Time

	for i, m := range s.Milestones {
		last := i == len(s.Milestones)-1

		if m.Kind == "" {
			return errors.New("milestone kind cannot be empty")
		}

		kinds := append([]MilestoneKind{m.Kind}, m.Folded...)
		for _, kind := range kinds {
			if seen[kind] {
				return fmt.Errorf("milestone %s appears more than once", kind)
			}
			seen[kind] = true
		}

		if m.Kind == MilestoneTitleDeedNotice && m.Date != nil {
			return errors.New("title deed notice milestone must be undated")
		}

		if m.Date == nil {
			if !last {
				return errors.New("only the last milestone may be undated")
			}
			continue
		}

		if previous != nil && m.Date.Before(*previous) {
			return fmt.Errorf("milestone %s is dated before the previous milestone", m.Kind)
		}
		previous = m.Date
	}

	if s.Milestones[len(s.Milestones)-1].Kind != MilestoneTitleDeedNotice {
		return errors.New("schedule must end with the title deed notice milestone")
	}

	return nil
}
