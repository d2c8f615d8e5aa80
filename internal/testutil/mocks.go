// Package testutil holds testify mocks of the domain repositories shared by service tests.
package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/estateflow-backend/internal/domain"
)

// MockProductRepository is a mock implementation of ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductSnapshot), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.ProductSnapshot) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetSelectedDiscounts(ctx context.Context, productID uuid.UUID, discountIDs []uuid.UUID) error {
	args := m.Called(ctx, productID, discountIDs)
	return args.Error(0)
}

// MockSitePlanRepository is a mock implementation of SitePlanRepository for testing
type MockSitePlanRepository struct {
	mock.Mock
}

func (m *MockSitePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SitePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SitePlan), args.Error(1)
}

func (m *MockSitePlanRepository) Create(ctx context.Context, plan *domain.SitePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockDiscountRepository is a mock implementation of DiscountRepository for testing
type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DiscountDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountDefinition), args.Error(1)
}

func (m *MockDiscountRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.DiscountDefinition, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DiscountDefinition), args.Error(1)
}

func (m *MockDiscountRepository) List(ctx context.Context, activeOnly bool) ([]*domain.DiscountDefinition, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DiscountDefinition), args.Error(1)
}

func (m *MockDiscountRepository) Create(ctx context.Context, discount *domain.DiscountDefinition) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

// MockScheduleRepository is a mock implementation of ScheduleRepository for testing
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Replace(ctx context.Context, schedule *domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]domain.Milestone, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Milestone), args.Error(1)
}
