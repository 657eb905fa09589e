package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/installment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// InstallmentRepository defines the interface for installment plan data operations
type InstallmentRepository interface {
	// ExistsByNo reports whether a plan with exactly this no is stored
	ExistsByNo(ctx context.Context, no string) (bool, error)

	// CreateWithItems inserts a plan and its items in one transaction
	CreateWithItems(ctx context.Context, plan *domain.InstallmentPlan, items []*domain.InstallmentItem) error

	// GetByNo retrieves a plan by its no
	GetByNo(ctx context.Context, no string) (*domain.InstallmentPlan, error)

	// RecordPayment marks the item paid, settles the order when settleOrder is set and
	// stores the plan's status and paid_at in one transaction.
	// It returns ErrItemAlreadyPaid when the item was already paid.
	RecordPayment(ctx context.Context, plan *domain.InstallmentPlan, item *domain.InstallmentItem, settleOrder bool) error

	// ListByOrderRefundStatus returns the plans whose order is in the given refund state
	ListByOrderRefundStatus(ctx context.Context, status domain.OrderRefundStatus) ([]*domain.InstallmentPlan, error)
}

// InstallmentItemRepository defines the interface for installment item data operations
type InstallmentItemRepository interface {
	// GetByInstallmentID reads the items of a plan ordered by sequence, bypassing any cache
	GetByInstallmentID(ctx context.Context, installmentID uuid.UUID) ([]*domain.InstallmentItem, error)

	// UpdateRefundStatus updates the refund status of a specific item
	UpdateRefundStatus(ctx context.Context, itemID uuid.UUID, status domain.ItemRefundStatus) error

	// GetOverdue gets unpaid items due before the given time
	GetOverdue(ctx context.Context, currentDate time.Time) ([]*domain.OverdueItem, error)

	// UpdateFine stores the accrued fine of an item
	UpdateFine(ctx context.Context, itemID uuid.UUID, fine decimal.Decimal) error
}

// OrderRepository defines the order operations this service relies on
type OrderRepository interface {
	// GetByID retrieves an order
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// UpdateRefundStatus sets the refund_status column of an order
	UpdateRefundStatus(ctx context.Context, id uuid.UUID, status domain.OrderRefundStatus) error
}

// UserRepository resolves plan owners
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
