package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/estateflow-backend/internal/domain"
)

// Fixed UUIDs for the standard discount catalog, stable across environments
var (
	DISCOUNT_OPENING_WEEK      = uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	DISCOUNT_FULL_PAYMENT      = uuid.MustParse("00000000-0000-0000-0000-0000000000d2")
	DISCOUNT_MANAGEMENT_WAIVER = uuid.MustParse("00000000-0000-0000-0000-0000000000d3")
	DISCOUNT_MAINTENANCE_AID   = uuid.MustParse("00000000-0000-0000-0000-0000000000d4")
	DISCOUNT_LOYALTY_VOUCHER   = uuid.MustParse("00000000-0000-0000-0000-0000000000d5")
)

// Fixed UUIDs of the demo records used by local environments
var (
	DEMO_SITE_PLAN = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	DEMO_PRODUCT   = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
)

// StandardCatalog returns the discount programs every environment starts with
func StandardCatalog() []domain.DiscountDefinition {
	return []domain.DiscountDefinition{
		{
			ID:     DISCOUNT_OPENING_WEEK,
			Name:   "Opening week",
			Kind:   domain.DiscountKindPercent,
			Value:  decimal.NewFromInt(3),
			MinQty: 1,
			Active: true,
		},
		{
			ID:     DISCOUNT_FULL_PAYMENT,
			Name:   "Full payment on contract",
			Kind:   domain.DiscountKindPercent,
			Value:  decimal.RequireFromString("9.5"),
			MinQty: 1,
			Active: true,
		},
		{
			ID:          DISCOUNT_MANAGEMENT_WAIVER,
			Name:        "Management fee waiver, 24 months",
			Kind:        domain.DiscountKindFormula,
			FormulaKind: domain.FormulaKindManagementFeeArea,
			Value:       decimal.NewFromInt(24),
			MinQty:      1,
			Active:      true,
		},
		{
			ID:          DISCOUNT_MAINTENANCE_AID,
			Name:        "Maintenance fund support",
			Kind:        domain.DiscountKindFormula,
			FormulaKind: domain.FormulaKindMaintenanceFeeArea,
			Value:       decimal.NewFromInt(1),
			MinQty:      1,
			Active:      true,
		},
		{
			ID:     DISCOUNT_LOYALTY_VOUCHER,
			Name:   "Returning customer voucher",
			Kind:   domain.DiscountKindFixedAmount,
			Value:  decimal.NewFromInt(50_000_000),
			MinQty: 1,
			Active: true,
		},
	}
}

// CatalogSeeder handles seeding of the standard discount catalog and demo records
type CatalogSeeder struct {
	discountRepo domain.DiscountRepository
	sitePlanRepo domain.SitePlanRepository
	productRepo  domain.ProductRepository
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(
	discountRepo domain.DiscountRepository,
	sitePlanRepo domain.SitePlanRepository,
	productRepo domain.ProductRepository,
) *CatalogSeeder {
	return &CatalogSeeder{
		discountRepo: discountRepo,
		sitePlanRepo: sitePlanRepo,
		productRepo:  productRepo,
	}
}

// Seed ensures every standard discount exists in the database
// Existing entries are left untouched. Returns the number of entries created.
func (s *CatalogSeeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, definition := range StandardCatalog() {
		_, err := s.discountRepo.GetByID(ctx, definition.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("failed to look up discount %s: %w", definition.Name, err)
		}

		if err := definition.Validate(); err != nil {
			return created, err
		}
		d := definition
		if err := s.discountRepo.Create(ctx, &d); err != nil {
			return created, fmt.Errorf("failed to create discount %s: %w", definition.Name, err)
		}
		created++
	}

	return created, nil
}

// SeedDemo creates a demo site plan and product when they are missing
func (s *CatalogSeeder) SeedDemo(ctx context.Context, depositDate time.Time) error {
	if _, err := s.sitePlanRepo.GetByID(ctx, DEMO_SITE_PLAN); errors.Is(err, domain.ErrNotFound) {
		date := domain.DateOf(depositDate)
		plan := &domain.SitePlan{
			ID:          DEMO_SITE_PLAN,
			Name:        "Demo phase 1",
			DepositDate: &date,
			Active:      true,
		}
		if err := s.sitePlanRepo.Create(ctx, plan); err != nil {
			return fmt.Errorf("failed to create demo site plan: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up demo site plan: %w", err)
	}

	if _, err := s.productRepo.GetByID(ctx, DEMO_PRODUCT); errors.Is(err, domain.ErrNotFound) {
		planID := DEMO_SITE_PLAN
		product := &domain.ProductSnapshot{
			ID:                  DEMO_PRODUCT,
			Name:                "Demo lot A-01",
			SitePlanID:          &planID,
			PriceExcludeLandTax: decimal.NewFromInt(3_600_000_000),
			LandTax:             decimal.NewFromInt(400_000_000),
			VATTax:              decimal.NewFromInt(360_000_000),
			MaintenanceFee:      decimal.NewFromInt(80_000_000),
			ManagementFee:       decimal.NewFromInt(15_000),
			Deposit:             decimal.NewFromInt(100_000_000),
			Area:                decimal.NewFromInt(120),
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create demo product: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up demo product: %w", err)
	}

	return nil
}
