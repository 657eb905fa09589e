package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrItemNotFound        = errors.New("installment item not found")
	ErrPlanNoUnavailable   = errors.New("no available installment no")
	ErrNoPendingItem       = errors.New("installment has no unpaid item")
	ErrInvalidInstallment  = errors.New("invalid installment")
	ErrItemNotPaid         = errors.New("installment item is not paid")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeItemNotFound        = "INSTALLMENT_ITEM_NOT_FOUND"
	ErrCodePlanNoUnavailable   = "PLAN_NO_UNAVAILABLE"
	ErrCodeNoPendingItem       = "NO_PENDING_ITEM"
	ErrCodeInvalidInstallment  = "INVALID_INSTALLMENT"
	ErrCodeItemNotPaid         = "ITEM_NOT_PAID"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
)

// Wrap common errors with business context
func WrapInstallmentNotFound(no string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s not found", no),
		ErrInstallmentNotFound,
	)
}

func WrapOrderNotFound(orderID string) *BusinessError {
	return NewBusinessError(
		ErrCodeOrderNotFound,
		fmt.Sprintf("Order %s not found", orderID),
		ErrOrderNotFound,
	)
}

func WrapItemNotFound(no string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodeItemNotFound,
		fmt.Sprintf("Installment %s has no item with sequence %d", no, sequence),
		ErrItemNotFound,
	)
}

func WrapPlanNoUnavailable() *BusinessError {
	return NewBusinessError(
		ErrCodePlanNoUnavailable,
		"could not allocate an installment no, retry later",
		ErrPlanNoUnavailable,
	)
}

func WrapNoPendingItem(no string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPendingItem,
		fmt.Sprintf("Installment %s is already fully repaid", no),
		ErrNoPendingItem,
	)
}

func WrapInvalidInstallment(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstallment,
		reason,
		ErrInvalidInstallment,
	)
}

func WrapItemNotPaid(no string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodeItemNotPaid,
		fmt.Sprintf("Installment %s item %d was never paid", no, sequence),
		ErrItemNotPaid,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

// Code extracts the business code from err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
