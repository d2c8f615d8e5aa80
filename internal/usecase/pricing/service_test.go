package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/estateflow-backend/internal/adapter/cache"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/testutil"
)

func newPricingFixture() (*PricingService, *testutil.MockProductRepository, *testutil.MockDiscountRepository, *cache.MemoryCache) {
	productRepo := new(testutil.MockProductRepository)
	discountRepo := new(testutil.MockDiscountRepository)
	memory := cache.NewMemoryCache()
	service := NewPricingService(productRepo, discountRepo, memory, domain.DefaultCurrency, time.Minute)
	return service, productRepo, discountRepo, memory
}

func TestGetPriceView_DerivesAndCaches(t *testing.T) {
	ctx := context.Background()
	service, productRepo, discountRepo, memory := newPricingFixture()

	tenPercent := &domain.DiscountDefinition{
		ID: uuid.New(), Name: "Opening week", Kind: domain.DiscountKindPercent,
		Value: decimal.NewFromInt(10), Active: true,
	}
	product := &domain.ProductSnapshot{
		ID:                  uuid.New(),
		PriceExcludeLandTax: decimal.NewFromInt(1_000_000),
		Area:                decimal.NewFromInt(50),
		SelectedDiscountIDs: []uuid.UUID{tenPercent.ID},
	}

	productRepo.On("GetByID", ctx, product.ID).Return(product, nil).Once()
	discountRepo.On("GetByIDs", ctx, []uuid.UUID{tenPercent.ID}).Return([]*domain.DiscountDefinition{tenPercent}, nil).Once()

	view, err := service.GetPriceView(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, view.FinalPrice.Equal(decimal.NewFromInt(900_000)))
	assert.True(t, view.PricePerM2.Equal(decimal.NewFromInt(20_000)))

	_, cached := memory.Get(ctx, PriceViewKey(product.ID))
	assert.True(t, cached)

	// Second call is served from the cache: the repositories are not called again
	again, err := service.GetPriceView(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, again.FinalPrice.Equal(view.FinalPrice))
	assert.Equal(t, view.ProductID, again.ProductID)
	require.Len(t, again.Discounts, 1)
	assert.Equal(t, "Opening week", again.Discounts[0].Name)

	productRepo.AssertExpectations(t)
	discountRepo.AssertExpectations(t)
}

func TestGetPriceView_NoSelectionSkipsCatalogLookup(t *testing.T) {
	ctx := context.Background()
	service, productRepo, discountRepo, _ := newPricingFixture()

	product := &domain.ProductSnapshot{ID: uuid.New(), PriceExcludeLandTax: decimal.NewFromInt(100)}
	productRepo.On("GetByID", ctx, product.ID).Return(product, nil)

	view, err := service.GetPriceView(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, view.FinalPrice.Equal(decimal.NewFromInt(100)))
	discountRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestGetPriceView_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	service, productRepo, _, _ := newPricingFixture()

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

	view, err := service.GetPriceView(ctx, id)
	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSelectDiscounts_DeduplicatesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	service, productRepo, discountRepo, memory := newPricingFixture()

	productID := uuid.New()
	a := &domain.DiscountDefinition{ID: uuid.New(), Name: "A", Kind: domain.DiscountKindFixedAmount, Value: decimal.NewFromInt(1), Active: true}
	b := &domain.DiscountDefinition{ID: uuid.New(), Name: "B", Kind: domain.DiscountKindFixedAmount, Value: decimal.NewFromInt(2), Active: true}

	require.NoError(t, memory.Set(ctx, PriceViewKey(productID), "{}", 0))

	productRepo.On("GetByID", ctx, productID).Return(&domain.ProductSnapshot{ID: productID}, nil)
	discountRepo.On("GetByIDs", ctx, []uuid.UUID{b.ID, a.ID}).Return([]*domain.DiscountDefinition{a, b}, nil)
	productRepo.On("SetSelectedDiscounts", ctx, productID, []uuid.UUID{b.ID, a.ID}).Return(nil)

	count, err := service.SelectDiscounts(ctx, productID, []uuid.UUID{b.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, cached := memory.Get(ctx, PriceViewKey(productID))
	assert.False(t, cached)
	productRepo.AssertExpectations(t)
}

func TestSelectDiscounts_EmptySelectionClears(t *testing.T) {
	ctx := context.Background()
	service, productRepo, discountRepo, _ := newPricingFixture()

	productID := uuid.New()
	productRepo.On("GetByID", ctx, productID).Return(&domain.ProductSnapshot{ID: productID}, nil)
	productRepo.On("SetSelectedDiscounts", ctx, productID, []uuid.UUID{}).Return(nil)

	count, err := service.SelectDiscounts(ctx, productID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	discountRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestSelectDiscounts_Rejections(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	inactive := &domain.DiscountDefinition{ID: uuid.New(), Name: "Expired", Kind: domain.DiscountKindPercent, Value: decimal.NewFromInt(5)}
	unknown := uuid.New()

	tests := []struct {
		name    string
		ids     []uuid.UUID
		catalog []*domain.DiscountDefinition
		errMsg  string
	}{
		{name: "unknown discount", ids: []uuid.UUID{unknown}, catalog: []*domain.DiscountDefinition{}, errMsg: "does not exist"},
		{name: "inactive discount", ids: []uuid.UUID{inactive.ID}, catalog: []*domain.DiscountDefinition{inactive}, errMsg: "is not active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, productRepo, discountRepo, _ := newPricingFixture()
			productRepo.On("GetByID", ctx, productID).Return(&domain.ProductSnapshot{ID: productID}, nil)
			discountRepo.On("GetByIDs", ctx, tt.ids).Return(tt.catalog, nil)

			count, err := service.SelectDiscounts(ctx, productID, tt.ids)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Zero(t, count)
			productRepo.AssertNotCalled(t, "SetSelectedDiscounts", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSelectDiscounts_StoreFailure(t *testing.T) {
	ctx := context.Background()
	service, productRepo, discountRepo, _ := newPricingFixture()

	productID := uuid.New()
	d := &domain.DiscountDefinition{ID: uuid.New(), Name: "A", Kind: domain.DiscountKindFixedAmount, Value: decimal.NewFromInt(1), Active: true}
	productRepo.On("GetByID", ctx, productID).Return(&domain.ProductSnapshot{ID: productID}, nil)
	discountRepo.On("GetByIDs", ctx, []uuid.UUID{d.ID}).Return([]*domain.DiscountDefinition{d}, nil)
	productRepo.On("SetSelectedDiscounts", ctx, productID, []uuid.UUID{d.ID}).Return(errors.New("connection reset"))

	_, err := service.SelectDiscounts(ctx, productID, []uuid.UUID{d.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store discount selection")
}
