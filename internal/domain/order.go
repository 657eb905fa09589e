package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRefundStatus mirrors the order's refund column.
type OrderRefundStatus string

const (
	OrderRefundStatusPending    OrderRefundStatus = "pending"
	OrderRefundStatusApplied    OrderRefundStatus = "applied"
	OrderRefundStatusProcessing OrderRefundStatus = "processing"
	OrderRefundStatusSuccess    OrderRefundStatus = "success"
	OrderRefundStatusFailed     OrderRefundStatus = "failed"
)

const PaymentMethodInstallment = "installment"

// Order is the slice of the order record this service reads and writes
type Order struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	No            string            `json:"no" db:"no"`
	UserID        uuid.UUID         `json:"user_id" db:"user_id"`
	TotalAmount   decimal.Decimal   `json:"total_amount" db:"total_amount"`
	PaidAt        *time.Time        `json:"paid_at,omitempty" db:"paid_at"`
	PaymentMethod *string           `json:"payment_method,omitempty" db:"payment_method"`
	PaymentNo     *string           `json:"payment_no,omitempty" db:"payment_no"`
	RefundStatus  OrderRefundStatus `json:"refund_status" db:"refund_status"`
}

// User is the owning account of a plan
type User struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
}
