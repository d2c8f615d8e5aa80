package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/logging"
	"github.com/simaogato/estateflow-backend/internal/metrics"
)

const priceViewKeyPrefix = "estateflow:price:"

// PriceViewKey is the cache key of a product's price view
func PriceViewKey(productID uuid.UUID) string {
	return priceViewKeyPrefix + productID.String()
}

// PricingService serves price views and manages discount selections
type PricingService struct {
	ProductRepo  domain.ProductRepository
	DiscountRepo domain.DiscountRepository
	Cache        domain.CacheRepository
	Currency     domain.Currency
	CacheTTL     time.Duration

	Logger  logging.Logger
	Metrics *metrics.Metrics
}

// NewPricingService creates a new PricingService instance
func NewPricingService(
	productRepo domain.ProductRepository,
	discountRepo domain.DiscountRepository,
	cache domain.CacheRepository,
	currency domain.Currency,
	cacheTTL time.Duration,
) *PricingService {
	return &PricingService{
		ProductRepo:  productRepo,
		DiscountRepo: discountRepo,
		Cache:        cache,
		Currency:     currency,
		CacheTTL:     cacheTTL,
		Logger:       logging.Nop(),
	}
}

// GetPriceView derives the price composition of a product
// Logic:
//  1. Serve the cached view when there is one
//  2. Load the product and the selected discount definitions
//  3. Derive, then cache the result
//
// Cache failures are logged and never fail the request.
func (s *PricingService) GetPriceView(ctx context.Context, productID uuid.UUID) (*PriceView, error) {
	key := PriceViewKey(productID)

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, key); ok {
			var view PriceView
			if err := json.Unmarshal([]byte(raw), &view); err == nil {
				s.Metrics.PriceViewServed(true)
				return &view, nil
			}
			s.Logger.Warn("discarding unreadable cached price view", "product_id", productID)
		}
	}

	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	catalog, err := s.loadCatalog(ctx, product.SelectedDiscountIDs)
	if err != nil {
		return nil, err
	}

	view := Derive(product, catalog, s.Currency)
	s.Metrics.PriceViewServed(false)
	s.Metrics.DiscountsSkipped(len(view.Skipped))
	for _, skipped := range view.Skipped {
		s.Logger.Warn("discount skipped", "product_id", productID, "discount_id", skipped.ID, "reason", skipped.Reason)
	}

	if s.Cache != nil {
		raw, err := json.Marshal(view)
		if err == nil {
			err = s.Cache.Set(ctx, key, string(raw), s.CacheTTL)
		}
		if err != nil {
			s.Logger.Warn("failed to cache price view", "product_id", productID, "error", err)
		}
	}

	return view, nil
}

// SelectDiscounts replaces the discount selection of a product and returns how many were selected
// Logic:
//  1. Duplicate IDs are dropped, keeping the first occurrence
//  2. Every ID must name an active catalog entry, otherwise nothing is stored
//  3. The cached price view is invalidated
func (s *PricingService) SelectDiscounts(ctx context.Context, productID uuid.UUID, discountIDs []uuid.UUID) (int, error) {
	if _, err := s.ProductRepo.GetByID(ctx, productID); err != nil {
		return 0, fmt.Errorf("failed to get product: %w", err)
	}

	unique := make([]uuid.UUID, 0, len(discountIDs))
	seen := make(map[uuid.UUID]bool, len(discountIDs))
	for _, id := range discountIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	catalog, err := s.loadCatalog(ctx, unique)
	if err != nil {
		return 0, err
	}

	for _, id := range unique {
		definition, ok := catalog[id]
		if !ok {
			return 0, fmt.Errorf("%w: discount %s does not exist", domain.ErrInvalidInput, id)
		}
		if !definition.Active {
			return 0, fmt.Errorf("%w: discount %q is not active", domain.ErrInvalidInput, definition.Name)
		}
	}

	if err := s.ProductRepo.SetSelectedDiscounts(ctx, productID, unique); err != nil {
		return 0, fmt.Errorf("failed to store discount selection: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, PriceViewKey(productID)); err != nil {
			s.Logger.Warn("failed to invalidate price view", "product_id", productID, "error", err)
		}
	}

	s.Logger.Info("discount selection updated", "product_id", productID, "selected", len(unique))
	return len(unique), nil
}

// ListDiscounts returns the discount catalog
func (s *PricingService) ListDiscounts(ctx context.Context, activeOnly bool) ([]*domain.DiscountDefinition, error) {
	discounts, err := s.DiscountRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, nil
}

func (s *PricingService) loadCatalog(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.DiscountDefinition, error) {
	catalog := make(map[uuid.UUID]*domain.DiscountDefinition, len(ids))
	if len(ids) == 0 {
		return catalog, nil
	}

	definitions, err := s.DiscountRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get discounts: %w", err)
	}
	for _, d := range definitions {
		catalog[d.ID] = d
	}
	return catalog, nil
}
