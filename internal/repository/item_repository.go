package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/installment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type itemRepository struct {
	db *sqlx.DB
}

func NewInstallmentItemRepository(db *sqlx.DB) InstallmentItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByInstallmentID(ctx context.Context, installmentID uuid.UUID) ([]*domain.InstallmentItem, error) {
	query := `
		SELECT id, installment_id, sequence, base, fee, fine, due_date, paid_at, payment_method, payment_no, refund_status, created_at, updated_at
		FROM installment_items
		WHERE installment_id = $1
		ORDER BY sequence
	`

	var items []*domain.InstallmentItem
	err := r.db.SelectContext(ctx, &items, query, installmentID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *itemRepository) UpdateRefundStatus(ctx context.Context, itemID uuid.UUID, status domain.ItemRefundStatus) error {
	query := `
		UPDATE installment_items
		SET refund_status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, itemID, status, time.Now())
	return err
}

func (r *itemRepository) GetOverdue(ctx context.Context, currentDate time.Time) ([]*domain.OverdueItem, error) {
	query := `
		SELECT it.id, it.installment_id, it.sequence, it.base, it.fee, it.fine, it.due_date, it.paid_at,
		       it.payment_method, it.payment_no, it.refund_status, it.created_at, it.updated_at, i.no, i.fine_rate
		FROM installment_items it
		JOIN installments i ON i.id = it.installment_id
		WHERE it.paid_at IS NULL AND it.due_date < $1
		ORDER BY it.installment_id, it.sequence
	`

	var items []*domain.OverdueItem
	err := r.db.SelectContext(ctx, &items, query, currentDate)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *itemRepository) UpdateFine(ctx context.Context, itemID uuid.UUID, fine decimal.Decimal) error {
	query := `
		UPDATE installment_items
		SET fine = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, itemID, fine, time.Now())
	return err
}
