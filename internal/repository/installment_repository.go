package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/segyhp/installment-service/internal/domain"
)

var (
	// ErrDuplicateNo is returned by CreateWithItems when the no is already stored
	ErrDuplicateNo = errors.New("installment no already exists")

	// ErrItemAlreadyPaid is returned by RecordPayment when another payment settled the item first
	ErrItemAlreadyPaid = errors.New("installment item already paid")
)

const (
	uniqueViolation  = "23505"
	noConstraintName = "installments_no_key"
)

const installmentColumns = `id, no, user_id, order_id, total_amount, count, fee_rate, fine_rate, status, paid_at, created_at, updated_at`

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) ExistsByNo(ctx context.Context, no string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM installments WHERE no = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, no); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *installmentRepository) CreateWithItems(ctx context.Context, plan *domain.InstallmentPlan, items []*domain.InstallmentItem) error {
	planQuery := `
		INSERT INTO installments (id, no, user_id, order_id, total_amount, count, fee_rate, fine_rate, status, paid_at, created_at, updated_at)
		VALUES (:id, :no, :user_id, :order_id, :total_amount, :count, :fee_rate, :fine_rate, :status, :paid_at, :created_at, :updated_at)
	`
	itemQuery := `
		INSERT INTO installment_items (id, installment_id, sequence, base, fee, fine, due_date, paid_at, payment_method, payment_no, refund_status, created_at, updated_at)
		VALUES (:id, :installment_id, :sequence, :base, :fee, :fine, :due_date, :paid_at, :payment_method, :payment_no, :refund_status, :created_at, :updated_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, planQuery, plan); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == noConstraintName {
			return ErrDuplicateNo
		}
		return err
	}

	for _, item := range items {
		if _, err = tx.NamedExecContext(ctx, itemQuery, item); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *installmentRepository) GetByNo(ctx context.Context, no string) (*domain.InstallmentPlan, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE no = $1`

	var plan domain.InstallmentPlan
	err := r.db.GetContext(ctx, &plan, query, no)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *installmentRepository) RecordPayment(ctx context.Context, plan *domain.InstallmentPlan, item *domain.InstallmentItem, settleOrder bool) error {
	itemQuery := `
		UPDATE installment_items
		SET paid_at = $2, payment_method = $3, payment_no = $4, updated_at = $5
		WHERE id = $1 AND paid_at IS NULL
	`
	orderQuery := `
		UPDATE orders
		SET paid_at = $2, payment_method = $3, payment_no = $4, updated_at = $5
		WHERE id = $1 AND paid_at IS NULL
	`
	planQuery := `
		UPDATE installments
		SET status = $2, paid_at = $3, updated_at = $4
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, itemQuery, item.ID, item.PaidAt, item.PaymentMethod, item.PaymentNo, now)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemAlreadyPaid
	}

	if settleOrder {
		if _, err = tx.ExecContext(ctx, orderQuery, plan.OrderID, plan.PaidAt, domain.PaymentMethodInstallment, plan.No, now); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, planQuery, plan.ID, plan.Status, plan.PaidAt, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *installmentRepository) ListByOrderRefundStatus(ctx context.Context, status domain.OrderRefundStatus) ([]*domain.InstallmentPlan, error) {
	query := `
		SELECT i.id, i.no, i.user_id, i.order_id, i.total_amount, i.count, i.fee_rate, i.fine_rate, i.status, i.paid_at, i.created_at, i.updated_at
		FROM installments i
		JOIN orders o ON o.id = i.order_id
		WHERE o.refund_status = $1
		ORDER BY i.created_at
	`

	var plans []*domain.InstallmentPlan
	err := r.db.SelectContext(ctx, &plans, query, status)
	if err != nil {
		return nil, err
	}

	return plans, nil
}
