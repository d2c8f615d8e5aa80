package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product snapshot persistence operations
type ProductRepository interface {
	// GetByID retrieves a product snapshot, selected discount IDs included
	GetByID(ctx context.Context, id uuid.UUID) (*ProductSnapshot, error)

	// Create creates a new product
	Create(ctx context.Context, product *ProductSnapshot) error

	// SetSelectedDiscounts replaces the discount selection of a product
	// The slice order is the selection order
	SetSelectedDiscounts(ctx context.Context, productID uuid.UUID, discountIDs []uuid.UUID) error
}

// SitePlanRepository defines the interface for site plan persistence operations
type SitePlanRepository interface {
	// GetByID retrieves a site plan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*SitePlan, error)

	// Create creates a new site plan
	Create(ctx context.Context, plan *SitePlan) error
}

// DiscountRepository defines the interface for discount catalog persistence operations
type DiscountRepository interface {
	// GetByID retrieves a discount definition by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*DiscountDefinition, error)

	// GetByIDs retrieves the discount definitions matching the given IDs
	// Unknown IDs are silently absent from the result; order is not guaranteed
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*DiscountDefinition, error)

	// List retrieves the catalog, optionally restricted to active programs
	List(ctx context.Context, activeOnly bool) ([]*DiscountDefinition, error)

	// Create creates a new discount definition
	Create(ctx context.Context, discount *DiscountDefinition) error
}

// ScheduleRepository defines the interface for payment schedule persistence operations
type ScheduleRepository interface {
	// Replace atomically discards every milestone of the product and stores the new schedule
	// Readers never observe a mix of old and new milestones
	Replace(ctx context.Context, schedule *Schedule) error

	// GetByProductID retrieves the persisted milestones of a product in emission order
	// Returns an empty slice when no schedule has been generated yet
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]Milestone, error)
}

// CacheRepository defines the interface for the shared key/value cache
type CacheRepository interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value; a zero ttl keeps it until deleted
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes a key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
