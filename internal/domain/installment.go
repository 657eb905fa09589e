package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of an installment plan.
type PlanStatus string

const (
	PlanStatusPending  PlanStatus = "pending"
	PlanStatusRepaying PlanStatus = "repaying"
	PlanStatusFinished PlanStatus = "finished"
)

var planStatusLabels = map[PlanStatus]string{
	PlanStatusPending:  "not yet executed",
	PlanStatusRepaying: "repaying",
	PlanStatusFinished: "finished",
}

// String implements fmt.Stringer.
func (s PlanStatus) String() string {
	return string(s)
}

// Label returns the display label, or an empty string for unknown values.
func (s PlanStatus) Label() string {
	return planStatusLabels[s]
}

// IsValid reports whether the value is a known PlanStatus.
func (s PlanStatus) IsValid() bool {
	_, ok := planStatusLabels[s]
	return ok
}

// ParsePlanStatus converts raw input into a PlanStatus.
func ParsePlanStatus(value string) (PlanStatus, error) {
	status := PlanStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid installment status %q", value)
	}
	return status, nil
}

// PlanStatusLabels returns a copy of the status to label table.
func PlanStatusLabels() map[PlanStatus]string {
	labels := make(map[PlanStatus]string, len(planStatusLabels))
	for status, label := range planStatusLabels {
		labels[status] = label
	}
	return labels
}

// InstallmentPlan represents a deferred-payment plan attached to an order
type InstallmentPlan struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	No          string          `json:"no" db:"no"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Count       int             `json:"count" db:"count"`
	FeeRate     decimal.Decimal `json:"fee_rate" db:"fee_rate"`
	FineRate    decimal.Decimal `json:"fine_rate" db:"fine_rate"`
	Status      PlanStatus      `json:"status" db:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	Items []*InstallmentItem `json:"items,omitempty" db:"-"`
}

// IsPaid reports whether the buyer has completed payment.
func (p *InstallmentPlan) IsPaid() bool {
	return p.PaidAt != nil
}

// AllItemsRefunded reports whether every item counts as fully refunded:
// the plan is paid and the item's refund succeeded. The scan stops at the
// first item that fails, so an unpaid plan only passes when it has no items.
func (p *InstallmentPlan) AllItemsRefunded(items []*InstallmentItem) bool {
	for _, item := range items {
		if !p.IsPaid() || item.RefundStatus != ItemRefundStatusSuccess {
			return false
		}
	}
	return true
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	No          string          `json:"no" validate:"omitempty,numeric,len=20"`
	UserID      uuid.UUID       `json:"user_id" validate:"required"`
	OrderID     uuid.UUID       `json:"order_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"gt=0"`
	Count       int             `json:"count" validate:"required,gt=0,lte=120"`
	FeeRate     decimal.Decimal `json:"fee_rate" validate:"gte=0,lte=100"`
	FineRate    decimal.Decimal `json:"fine_rate" validate:"gte=0,lte=100"`
}

type PayItemRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=alipay wechat"`
	PaymentNo     string `json:"payment_no" validate:"required,max=64"`
}

type ItemRefundRequest struct {
	Success bool `json:"success"`
}

// PlanDetail is a plan together with its resolved relations.
type PlanDetail struct {
	*InstallmentPlan
	User  *User  `json:"user,omitempty"`
	Order *Order `json:"order,omitempty"`
}

type StatusLabel struct {
	Status PlanStatus `json:"status"`
	Label  string     `json:"label"`
}
