package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/estateflow-backend/internal/domain"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func million(v int64) decimal.Decimal {
	return decimal.NewFromInt(v * 1_000_000)
}

// One billion tax-inclusive, 100M VAT, 20M maintenance fund, 50M deposit
func sampleProduct() *domain.ProductSnapshot {
	return &domain.ProductSnapshot{
		ID:                  uuid.MustParse("7b0d1a8e-4a51-4e4b-9d7c-3f1f0c2f6a01"),
		Name:                "Lot A-12",
		PriceExcludeLandTax: million(900),
		LandTax:             million(100),
		VATTax:              million(100),
		MaintenanceFee:      million(20),
		Deposit:             million(50),
		Area:                decimal.NewFromInt(100),
	}
}

func kinds(s *domain.Schedule) []domain.MilestoneKind {
	out := make([]domain.MilestoneKind, 0, len(s.Milestones))
	for _, m := range s.Milestones {
		out = append(out, m.Kind)
	}
	return out
}

func findKind(t *testing.T, s *domain.Schedule, kind domain.MilestoneKind) domain.Milestone {
	t.Helper()
	for _, m := range s.Milestones {
		if m.Kind == kind {
			return m
		}
	}
	require.Failf(t, "milestone not found", "kind %s", kind)
	return domain.Milestone{}
}

func assertMoney(t *testing.T, want, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, want.Equal(got), "%s: expected %s, got %s", field, want, got)
}

func TestGenerate_AllInstallmentsInFuture(t *testing.T) {
	// Anchor and today on 2024-01-01: every installment is due later, nothing folds
	schedule := Generate(sampleProduct(), day("2024-01-01"), day("2024-01-01"), domain.DefaultCurrency, DefaultConfig())

	require.NoError(t, schedule.Validate())
	require.Len(t, schedule.Milestones, 12)

	expected := []struct {
		kind      domain.MilestoneKind
		date      string
		principal int64
		vat       int64
		bank      int64
		label     string
	}{
		{domain.MilestoneDeposit, "2024-01-01", 50, 0, 220, "Deposit"},
		{domain.MilestonePlusDays, "2024-01-04", 0, 0, 0, "5%"},
		{domain.MilestoneContractSigning, "2024-02-01", 150, 20, 0, "Up to 20% + VAT"},
		{domain.MilestoneInstallment4, "2024-03-01", 50, 5, 330, "5% + matching VAT"},
		{domain.MilestoneInstallment5, "2024-05-01", 50, 5, 0, "5% + matching VAT"},
		{domain.MilestoneInstallment6, "2024-07-01", 50, 5, 0, "5% + matching VAT"},
		{domain.MilestoneInstallment7, "2024-10-01", 50, 5, 0, "5% + matching VAT"},
		{domain.MilestoneInstallment8, "2025-01-01", 50, 5, 0, "5% + matching VAT"},
		{domain.MilestoneInstallment9, "2025-04-01", 50, 5, 0, "5% + matching VAT"},
		{domain.MilestoneHandover, "2025-07-01", 450, 50, 390, "45% + remaining VAT"},
		{domain.MilestoneMaintenanceFund, "2025-07-01", 20, 0, 130, "Maintenance fund"},
		{domain.MilestoneTitleDeedNotice, "", 50, 0, 50, "5%"},
	}

	for i, want := range expected {
		got := schedule.Milestones[i]
		t.Run(string(want.kind), func(t *testing.T) {
			assert.Equal(t, want.kind, got.Kind)
			assert.Equal(t, i+1, got.Sequence)
			if want.date == "" {
				assert.Nil(t, got.Date)
			} else {
				require.NotNil(t, got.Date)
				assert.Equal(t, want.date, got.Date.Format(domain.DateLayout))
			}
			assertMoney(t, million(want.principal), got.Principal, "principal")
			assertMoney(t, million(want.vat), got.VATAmount, "vat")
			assertMoney(t, million(want.bank), got.BankAmount, "bank")
			assert.Equal(t, want.label, got.Label)
			assert.Empty(t, got.Folded)
			assert.NotEmpty(t, got.BankNote)
		})
	}

	// Deposit principal is the deposit itself
	assertMoney(t, sampleProduct().Deposit, schedule.Milestones[0].Principal, "deposit")
}

func TestGenerate_ElapsedInstallmentsFoldIntoNextDueOne(t *testing.T) {
	// +2, +4, +6 and +9 months have elapsed on 2024-12-01; +12 is the first one still due
	schedule := Generate(sampleProduct(), day("2024-01-01"), day("2024-12-01"), domain.DefaultCurrency, DefaultConfig())

	require.NoError(t, schedule.Validate())
	assert.Equal(t, []domain.MilestoneKind{
		domain.MilestoneDeposit,
		domain.MilestonePlusDays,
		domain.MilestoneContractSigning,
		domain.MilestoneInstallment8,
		domain.MilestoneInstallment9,
		domain.MilestoneHandover,
		domain.MilestoneMaintenanceFund,
		domain.MilestoneTitleDeedNotice,
	}, kinds(schedule))

	consolidated := schedule.Milestones[3]
	assert.Equal(t, 4, consolidated.Sequence)
	assert.Equal(t, "2025-01-01", consolidated.Date.Format(domain.DateLayout))
	assertMoney(t, million(250), consolidated.Principal, "principal")
	assertMoney(t, million(25), consolidated.VATAmount, "vat")
	assertMoney(t, million(330), consolidated.BankAmount, "bank")
	assert.Equal(t, "25% + matching VAT (incl. 4 overdue installments)", consolidated.Label)
	assert.Equal(t, []domain.MilestoneKind{
		domain.MilestoneInstallment4,
		domain.MilestoneInstallment5,
		domain.MilestoneInstallment6,
		domain.MilestoneInstallment7,
	}, consolidated.Folded)

	next := schedule.Milestones[4]
	assert.Equal(t, "5% + matching VAT", next.Label)
	assert.Empty(t, next.Folded)
	assertMoney(t, million(50), next.Principal, "principal")
}

func TestGenerate_AllInstallmentsElapsedFoldIntoHandover(t *testing.T) {
	// On 2025-06-01 even the +15 month installment (2025-04-01) is overdue
	schedule := Generate(sampleProduct(), day("2024-01-01"), day("2025-06-01"), domain.DefaultCurrency, DefaultConfig())

	require.NoError(t, schedule.Validate())
	assert.Equal(t, []domain.MilestoneKind{
		domain.MilestoneDeposit,
		domain.MilestonePlusDays,
		domain.MilestoneContractSigning,
		domain.MilestoneHandover,
		domain.MilestoneMaintenanceFund,
		domain.MilestoneTitleDeedNotice,
	}, kinds(schedule))

	handover := findKind(t, schedule, domain.MilestoneHandover)
	assertMoney(t, million(750), handover.Principal, "principal")
	assertMoney(t, million(80), handover.VATAmount, "vat")
	assertMoney(t, million(720), handover.BankAmount, "bank")
	assert.Equal(t, "75% + remaining VAT (incl. 6 overdue installments)", handover.Label)
	assert.Len(t, handover.Folded, 6)

	// Maintenance fund never absorbs carried amounts
	fund := findKind(t, schedule, domain.MilestoneMaintenanceFund)
	assertMoney(t, million(20), fund.Principal, "principal")
	assert.Empty(t, fund.Folded)
}

func TestGenerate_InstallmentDueTodayIsNotElapsed(t *testing.T) {
	schedule := Generate(sampleProduct(), day("2024-01-01"), day("2024-03-01"), domain.DefaultCurrency, DefaultConfig())

	installment := findKind(t, schedule, domain.MilestoneInstallment4)
	assert.Empty(t, installment.Folded)
	assert.Len(t, schedule.Milestones, 12)
}

func TestGenerate_Invariants(t *testing.T) {
	product := sampleProduct()
	anchor := day("2024-01-01")
	reference := Generate(product, anchor, anchor, domain.DefaultCurrency, DefaultConfig())

	bankTotal := decimal.Zero
	for _, m := range reference.Milestones {
		bankTotal = bankTotal.Add(m.BankAmount)
	}

	deferrable := map[domain.MilestoneKind]bool{
		domain.MilestoneInstallment4: true,
		domain.MilestoneInstallment5: true,
		domain.MilestoneInstallment6: true,
		domain.MilestoneInstallment7: true,
		domain.MilestoneInstallment8: true,
		domain.MilestoneInstallment9: true,
	}

	for today := anchor.AddDate(0, 0, -30); today.Before(day("2026-06-01")); today = today.AddDate(0, 0, 9) {
		schedule := Generate(product, anchor, today, domain.DefaultCurrency, DefaultConfig())
		label := today.Format(domain.DateLayout)

		require.NoError(t, schedule.Validate(), label)
		assertMoney(t, decimal.NewFromInt(1_000_000_000), schedule.PricePrincipal(), label+" price principal")
		assertMoney(t, million(100), schedule.TotalVAT(), label+" vat")

		bank := decimal.Zero
		covered := 0
		for _, m := range schedule.Milestones {
			bank = bank.Add(m.BankAmount)
			covered += 1 + len(m.Folded)
			if deferrable[m.Kind] {
				assert.False(t, m.Date.Before(today), "%s: %s emitted although elapsed", label, m.Kind)
			}
			for _, folded := range m.Folded {
				assert.True(t, deferrable[folded], "%s: %s cannot be folded", label, folded)
			}
		}
		assertMoney(t, bankTotal, bank, label+" bank")
		assert.Equal(t, 12, covered, label)

		last := schedule.Milestones[len(schedule.Milestones)-1]
		assert.Equal(t, domain.MilestoneTitleDeedNotice, last.Kind, label)
		assert.Nil(t, last.Date, label)
	}
}

func TestGenerate_IsIdempotent(t *testing.T) {
	product := sampleProduct()

	first := Generate(product, day("2024-01-01"), day("2024-12-01"), domain.DefaultCurrency, DefaultConfig())
	second := Generate(product, day("2024-01-01"), day("2024-12-01"), domain.DefaultCurrency, DefaultConfig())

	assert.Equal(t, first, second)
}

func TestGenerate_RoundingRemainderGoesToTitleDeed(t *testing.T) {
	product := &domain.ProductSnapshot{
		ID:                  uuid.New(),
		PriceExcludeLandTax: decimal.NewFromInt(1_000_003),
		VATTax:              decimal.NewFromInt(100_003),
	}

	schedule := Generate(product, day("2024-01-01"), day("2024-01-01"), domain.DefaultCurrency, DefaultConfig())

	// 5% of 1,000,003 rounds to 50,000 per installment; the title deed closes the gap
	assertMoney(t, decimal.NewFromInt(50_000), findKind(t, schedule, domain.MilestoneInstallment9).Principal, "installment")
	assertMoney(t, decimal.NewFromInt(50_001), findKind(t, schedule, domain.MilestoneTitleDeedNotice).Principal, "title deed")
	assertMoney(t, decimal.NewFromInt(1_000_003), schedule.PricePrincipal(), "price principal")

	// Handover takes what is left of the VAT: 100,003 - 20,001 - 6 x 5,000
	assertMoney(t, decimal.NewFromInt(50_002), findKind(t, schedule, domain.MilestoneHandover).VATAmount, "handover vat")
	assertMoney(t, decimal.NewFromInt(100_003), schedule.TotalVAT(), "vat")
}

func TestGenerate_CurrencyPrecision(t *testing.T) {
	product := &domain.ProductSnapshot{
		ID:                  uuid.New(),
		PriceExcludeLandTax: decimal.RequireFromString("1000.07"),
		VATTax:              decimal.RequireFromString("100.01"),
	}
	usd := domain.Currency{Code: "USD", Precision: 2}

	schedule := Generate(product, day("2024-01-01"), day("2024-01-01"), usd, DefaultConfig())

	for _, m := range schedule.Milestones {
		assert.True(t, m.Principal.Equal(usd.Round(m.Principal)), "%s principal %s", m.Kind, m.Principal)
		assert.True(t, m.VATAmount.Equal(usd.Round(m.VATAmount)), "%s vat %s", m.Kind, m.VATAmount)
		assert.True(t, m.BankAmount.Equal(usd.Round(m.BankAmount)), "%s bank %s", m.Kind, m.BankAmount)
	}
	assertMoney(t, decimal.RequireFromString("1000.07"), schedule.PricePrincipal(), "price principal")
	assertMoney(t, decimal.RequireFromString("100.01"), schedule.TotalVAT(), "vat")
}

func TestGenerate_ZeroInputs(t *testing.T) {
	product := &domain.ProductSnapshot{ID: uuid.New()}

	schedule := Generate(product, time.Time{}, day("2024-05-10"), domain.DefaultCurrency, DefaultConfig())

	require.NoError(t, schedule.Validate())
	assert.True(t, day("2024-05-10").Equal(schedule.AnchorDate), "zero anchor falls back to today")
	for _, m := range schedule.Milestones {
		assert.True(t, m.Total().IsZero(), "%s should be zero", m.Kind)
	}
}

func TestGenerate_LargeDepositMakesPlusDaysNegative(t *testing.T) {
	product := sampleProduct()
	product.Deposit = million(80)

	schedule := Generate(product, day("2024-01-01"), day("2024-01-01"), domain.DefaultCurrency, DefaultConfig())

	assertMoney(t, million(-30), schedule.Milestones[1].Principal, "plus days")
	assertMoney(t, million(150), schedule.Milestones[2].Principal, "contract signing")
	assertMoney(t, decimal.NewFromInt(1_000_000_000), schedule.PricePrincipal(), "price principal")
}

func TestGenerate_ClampsMonthEnd(t *testing.T) {
	schedule := Generate(sampleProduct(), day("2024-01-31"), day("2024-01-31"), domain.DefaultCurrency, DefaultConfig())

	require.NoError(t, schedule.Validate())
	assert.Equal(t, "2024-02-29", findKind(t, schedule, domain.MilestoneContractSigning).Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-03-31", findKind(t, schedule, domain.MilestoneInstallment4).Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-04-30", findKind(t, schedule, domain.MilestoneInstallment9).Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-07-31", findKind(t, schedule, domain.MilestoneHandover).Date.Format(domain.DateLayout))
}

func TestGenerate_PlusDaysIsConfigurable(t *testing.T) {
	tests := []struct {
		name     string
		plusDays int
		want     string
	}{
		{name: "two days", plusDays: 2, want: "2024-01-03"},
		{name: "three days", plusDays: 3, want: "2024-01-04"},
		{name: "negative clamps to the deposit date", plusDays: -1, want: "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Generate(sampleProduct(), day("2024-01-01"), day("2024-01-01"), domain.DefaultCurrency, Config{PlusDays: tt.plusDays})
			assert.Equal(t, tt.want, schedule.Milestones[1].Date.Format(domain.DateLayout))
		})
	}
}

func TestResolveAnchor(t *testing.T) {
	siteDate := day("2023-06-15")
	productDate := day("2023-09-01")
	today := time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sitePlan *domain.SitePlan
		product  *domain.ProductSnapshot
		want     time.Time
	}{
		{
			name:     "site plan date wins",
			sitePlan: &domain.SitePlan{DepositDate: &siteDate},
			product:  &domain.ProductSnapshot{DepositDate: &productDate},
			want:     siteDate,
		},
		{
			name:     "site plan without a date falls back to the product",
			sitePlan: &domain.SitePlan{},
			product:  &domain.ProductSnapshot{DepositDate: &productDate},
			want:     productDate,
		},
		{
			name:    "no site plan uses the product date",
			product: &domain.ProductSnapshot{DepositDate: &productDate},
			want:    productDate,
		},
		{
			name:    "no dates at all uses today",
			product: &domain.ProductSnapshot{},
			want:    day("2024-02-10"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAnchor(tt.sitePlan, tt.product, today)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}
