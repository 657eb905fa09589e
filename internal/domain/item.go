package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRefundStatus tracks the refund of a single installment item.
type ItemRefundStatus string

const (
	ItemRefundStatusPending    ItemRefundStatus = "pending"
	ItemRefundStatusProcessing ItemRefundStatus = "processing"
	ItemRefundStatusSuccess    ItemRefundStatus = "success"
	ItemRefundStatusFailed     ItemRefundStatus = "failed"
)

// IsValid reports whether the value is a known ItemRefundStatus.
func (s ItemRefundStatus) IsValid() bool {
	switch s {
	case ItemRefundStatusPending, ItemRefundStatusProcessing, ItemRefundStatusSuccess, ItemRefundStatusFailed:
		return true
	}
	return false
}

// InstallmentItem represents one repayment period of a plan
type InstallmentItem struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	InstallmentID uuid.UUID        `json:"installment_id" db:"installment_id"`
	Sequence      int              `json:"sequence" db:"sequence"`
	Base          decimal.Decimal  `json:"base" db:"base"`
	Fee           decimal.Decimal  `json:"fee" db:"fee"`
	Fine          *decimal.Decimal `json:"fine,omitempty" db:"fine"`
	DueDate       time.Time        `json:"due_date" db:"due_date"`
	PaidAt        *time.Time       `json:"paid_at,omitempty" db:"paid_at"`
	PaymentMethod *string          `json:"payment_method,omitempty" db:"payment_method"`
	PaymentNo     *string          `json:"payment_no,omitempty" db:"payment_no"`
	RefundStatus  ItemRefundStatus `json:"refund_status" db:"refund_status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// Total is base + fee + fine.
func (i *InstallmentItem) Total() decimal.Decimal {
	total := i.Base.Add(i.Fee)
	if i.Fine != nil {
		total = total.Add(*i.Fine)
	}
	return total
}

func (i *InstallmentItem) IsPaid() bool {
	return i.PaidAt != nil
}

// IsOverdue reports whether the item is unpaid past its due date.
func (i *InstallmentItem) IsOverdue(now time.Time) bool {
	return !i.IsPaid() && now.After(i.DueDate)
}

// OverdueItem is an unpaid item past due, joined with its plan's no and fine rate.
type OverdueItem struct {
	InstallmentItem
	No       string          `db:"no"`
	FineRate decimal.Decimal `db:"fine_rate"`
}
