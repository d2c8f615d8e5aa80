package timeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/logging"
	"github.com/simaogato/estateflow-backend/internal/metrics"
	"github.com/simaogato/estateflow-backend/internal/usecase/scheduler"
)

const fingerprintKeyPrefix = "estateflow:schedule-fp:"

// FingerprintKey is the cache key holding the fingerprint of a product's persisted schedule
func FingerprintKey(productID uuid.UUID) string {
	return fingerprintKeyPrefix + productID.String()
}

// ScheduleService generates, persists and serves payment schedules
type ScheduleService struct {
	ProductRepo  domain.ProductRepository
	SitePlanRepo domain.SitePlanRepository
	ScheduleRepo domain.ScheduleRepository
	Cache        domain.CacheRepository
	Currency     domain.Currency
	Config       scheduler.Config

	// Now and Location decide what "today" is
	Now      func() time.Time
	Location *time.Location

	Logger  logging.Logger
	Metrics *metrics.Metrics
}

// NewScheduleService creates a new ScheduleService instance
func NewScheduleService(
	productRepo domain.ProductRepository,
	sitePlanRepo domain.SitePlanRepository,
	scheduleRepo domain.ScheduleRepository,
	cache domain.CacheRepository,
	currency domain.Currency,
	cfg scheduler.Config,
) *ScheduleService {
	return &ScheduleService{
		ProductRepo:  productRepo,
		SitePlanRepo: sitePlanRepo,
		ScheduleRepo: scheduleRepo,
		Cache:        cache,
		Currency:     currency,
		Config:       cfg,
		Now:          time.Now,
		Location:     time.UTC,
		Logger:       logging.Nop(),
	}
}

// Today is the current calendar date in the configured timezone
func (s *ScheduleService) Today() time.Time {
	return domain.DateOf(s.Now().In(s.Location))
}

// Regenerate recomputes the schedule of a product and replaces the persisted one
// Logic:
//  1. Fetch the product and its site plan
//  2. Resolve the anchor date (site plan, then product, then today)
//  3. Generate the schedule for today
//  4. Skip the write when the persisted schedule has the same fingerprint
//  5. Otherwise replace every milestone in one transaction
func (s *ScheduleService) Regenerate(ctx context.Context, productID uuid.UUID) (*domain.Schedule, error) {
	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	sitePlan, err := s.sitePlanOf(ctx, product)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	anchor := scheduler.ResolveAnchor(sitePlan, product, today)
	schedule := scheduler.Generate(product, anchor, today, s.Currency, s.Config)

	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("generated schedule is inconsistent: %w", err)
	}

	fingerprint := Fingerprint(schedule)
	if s.unchanged(ctx, schedule, fingerprint) {
		s.Metrics.ScheduleWriteSkipped()
		s.Logger.Debug("schedule unchanged, write skipped", "product_id", productID)
		return schedule, nil
	}

	if err := s.ScheduleRepo.Replace(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to replace schedule: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, FingerprintKey(productID), fingerprint, 0); err != nil {
			s.Logger.Warn("failed to store schedule fingerprint", "product_id", productID, "error", err)
		}
	}

	folded := 0
	for _, m := range schedule.Milestones {
		folded += len(m.Folded)
	}
	s.Metrics.ScheduleGenerated(folded)
	s.Logger.Info("schedule regenerated",
		"product_id", productID,
		"anchor", anchor.Format(domain.DateLayout),
		"milestones", len(schedule.Milestones),
		"folded", folded,
	)

	return schedule, nil
}

// GetSchedule returns the persisted schedule of a product, generating it on first access
func (s *ScheduleService) GetSchedule(ctx context.Context, productID uuid.UUID) (*domain.Schedule, error) {
	milestones, err := s.ScheduleRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if len(milestones) == 0 {
		return s.Regenerate(ctx, productID)
	}

	return &domain.Schedule{
		ProductID:  productID,
		Today:      s.Today(),
		Milestones: milestones,
	}, nil
}

// Preview generates a schedule without persisting it.
// A nil anchor is resolved from the product deposit date, then today.
func (s *ScheduleService) Preview(product *domain.ProductSnapshot, anchor *time.Time) *domain.Schedule {
	today := s.Today()
	resolved := scheduler.ResolveAnchor(nil, product, today)
	if anchor != nil {
		resolved = domain.DateOf(*anchor)
	}
	return scheduler.Generate(product, resolved, today, s.Currency, s.Config)
}

func (s *ScheduleService) sitePlanOf(ctx context.Context, product *domain.ProductSnapshot) (*domain.SitePlan, error) {
	if product.SitePlanID == nil || s.SitePlanRepo == nil {
		return nil, nil
	}

	plan, err := s.SitePlanRepo.GetByID(ctx, *product.SitePlanID)
	if errors.Is(err, domain.ErrNotFound) {
		s.Logger.Warn("product references a missing site plan", "product_id", product.ID, "site_plan_id", *product.SitePlanID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site plan: %w", err)
	}
	return plan, nil
}

// unchanged reports whether the persisted schedule already matches the generated one
func (s *ScheduleService) unchanged(ctx context.Context, schedule *domain.Schedule, fingerprint string) bool {
	if s.Cache == nil {
		return false
	}
	stored, ok := s.Cache.Get(ctx, FingerprintKey(schedule.ProductID))
	if !ok || stored != fingerprint {
		return false
	}

	// The cache may outlive the rows it describes
	persisted, err := s.ScheduleRepo.GetByProductID(ctx, schedule.ProductID)
	return err == nil && len(persisted) == len(schedule.Milestones)
}

// Fingerprint hashes the persisted content of a schedule
func Fingerprint(schedule *domain.Schedule) string {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.WriteString("\x1f")
	}

	write(schedule.ProductID.String())
	for _, m := range schedule.Milestones {
		write(strconv.Itoa(m.Sequence))
		write(string(m.Kind))
		if m.Date != nil {
			write(m.Date.Format(domain.DateLayout))
		} else {
			write("-")
		}
		write(m.Label)
		write(m.Principal.String())
		write(m.VATAmount.String())
		write(m.BankAmount.String())
		write(m.BankNote)
		for _, kind := range m.Folded {
			write(string(kind))
		}
		_, _ = h.WriteString("\x1e")
	}

	return strconv.FormatUint(h.Sum64(), 16)
}
