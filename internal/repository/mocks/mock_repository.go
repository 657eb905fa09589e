package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/installment-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) ExistsByNo(ctx context.Context, no string) (bool, error) {
	args := m.Called(ctx, no)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) CreateWithItems(ctx context.Context, plan *domain.InstallmentPlan, items []*domain.InstallmentItem) error {
	args := m.Called(ctx, plan, items)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByNo(ctx context.Context, no string) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, no)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentRepository) RecordPayment(ctx context.Context, plan *domain.InstallmentPlan, item *domain.InstallmentItem, settleOrder bool) error {
	args := m.Called(ctx, plan, item, settleOrder)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListByOrderRefundStatus(ctx context.Context, status domain.OrderRefundStatus) ([]*domain.InstallmentPlan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallmentPlan), args.Error(1)
}

type MockInstallmentItemRepository struct {
	mock.Mock
}

func (m *MockInstallmentItemRepository) GetByInstallmentID(ctx context.Context, installmentID uuid.UUID) ([]*domain.InstallmentItem, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallmentItem), args.Error(1)
}

func (m *MockInstallmentItemRepository) UpdateRefundStatus(ctx context.Context, itemID uuid.UUID, status domain.ItemRefundStatus) error {
	args := m.Called(ctx, itemID, status)
	return args.Error(0)
}

func (m *MockInstallmentItemRepository) GetOverdue(ctx context.Context, currentDate time.Time) ([]*domain.OverdueItem, error) {
	args := m.Called(ctx, currentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OverdueItem), args.Error(1)
}

func (m *MockInstallmentItemRepository) UpdateFine(ctx context.Context, itemID uuid.UUID, fine decimal.Decimal) error {
	args := m.Called(ctx, itemID, fine)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateRefundStatus(ctx context.Context, id uuid.UUID, status domain.OrderRefundStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockPlanCache struct {
	mock.Mock
}

func (m *MockPlanCache) Get(ctx context.Context, no string) (*domain.PlanDetail, error) {
	args := m.Called(ctx, no)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanDetail), args.Error(1)
}

func (m *MockPlanCache) Set(ctx context.Context, detail *domain.PlanDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockPlanCache) Delete(ctx context.Context, no string) error {
	args := m.Called(ctx, no)
	return args.Error(0)
}
