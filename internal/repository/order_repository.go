package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/installment-service/internal/domain"
)

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, no, user_id, total_amount, paid_at, payment_method, payment_no, refund_status
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) UpdateRefundStatus(ctx context.Context, id uuid.UUID, status domain.OrderRefundStatus) error {
	query := `UPDATE orders SET refund_status = $2, updated_at = $3 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, email FROM users WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}
