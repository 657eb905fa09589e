package repository_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-service/internal/domain"
	"github.com/segyhp/installment-service/internal/migrate"
	"github.com/segyhp/installment-service/internal/repository"
)

// setupTestDB connects to TEST_DATABASE_URL and migrates the schema; the test
// is skipped when no database is configured.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrate.Up(context.Background(), db.DB))

	_, err = db.Exec(`TRUNCATE installment_items, installments, orders, users CASCADE`)
	require.NoError(t, err)

	return db
}

type fixture struct {
	user  *domain.User
	order *domain.Order
}

func seedOrder(t *testing.T, db *sqlx.DB, refundStatus domain.OrderRefundStatus) fixture {
	t.Helper()

	user := &domain.User{ID: uuid.New(), Name: "buyer", Email: "buyer@example.com"}
	_, err := db.Exec(`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`, user.ID, user.Name, user.Email)
	require.NoError(t, err)

	order := &domain.Order{
		ID:           uuid.New(),
		No:           uuid.NewString(),
		UserID:       user.ID,
		TotalAmount:  decimal.NewFromInt(300),
		RefundStatus: refundStatus,
	}
	_, err = db.Exec(`INSERT INTO orders (id, no, user_id, total_amount, refund_status) VALUES ($1, $2, $3, $4, $5)`,
		order.ID, order.No, order.UserID, order.TotalAmount, order.RefundStatus)
	require.NoError(t, err)

	return fixture{user: user, order: order}
}

func newPlan(f fixture, no string, count int) (*domain.InstallmentPlan, []*domain.InstallmentItem) {
	now := time.Now().UTC().Truncate(time.Second)
	plan := &domain.InstallmentPlan{
		ID:          uuid.New(),
		No:          no,
		UserID:      f.user.ID,
		OrderID:     f.order.ID,
		TotalAmount: f.order.TotalAmount,
		Count:       count,
		FeeRate:     decimal.RequireFromString("1.5"),
		FineRate:    decimal.RequireFromString("0.05"),
		Status:      domain.PlanStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items := make([]*domain.InstallmentItem, 0, count)
	for seq := 0; seq < count; seq++ {
		items = append(items, &domain.InstallmentItem{
			ID:            uuid.New(),
			InstallmentID: plan.ID,
			Sequence:      seq,
			Base:          decimal.NewFromInt(100),
			Fee:           decimal.RequireFromString("1.5"),
			DueDate:       now.AddDate(0, 0, 30*seq-1),
			RefundStatus:  domain.ItemRefundStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return plan, items
}

func TestInstallmentRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewInstallmentRepository(db)
	itemRepo := repository.NewInstallmentItemRepository(db)

	f := seedOrder(t, db, domain.OrderRefundStatusPending)
	plan, items := newPlan(f, "20240102030405000001", 3)

	require.NoError(t, repo.CreateWithItems(ctx, plan, items))

	exists, err := repo.ExistsByNo(ctx, plan.No)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNo(ctx, "20240102030405000002")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := repo.GetByNo(ctx, plan.No)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, domain.PlanStatusPending, got.Status)
	assert.True(t, got.FeeRate.Equal(plan.FeeRate))

	stored, err := itemRepo.GetByInstallmentID(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, item := range stored {
		assert.Equal(t, i, item.Sequence)
	}

	_, err = repo.GetByNo(ctx, "00000000000000000000")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInstallmentRepository_DuplicateNo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewInstallmentRepository(db)

	f := seedOrder(t, db, domain.OrderRefundStatusPending)
	first, firstItems := newPlan(f, "20240102030405000001", 1)
	require.NoError(t, repo.CreateWithItems(ctx, first, firstItems))

	second, secondItems := newPlan(f, first.No, 1)
	err := repo.CreateWithItems(ctx, second, secondItems)
	assert.ErrorIs(t, err, repository.ErrDuplicateNo)

	// The failed transaction must not leave items behind
	stored, err := repository.NewInstallmentItemRepository(db).GetByInstallmentID(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestItemRepository_PaymentRefundAndFines(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewInstallmentRepository(db)
	itemRepo := repository.NewInstallmentItemRepository(db)

	f := seedOrder(t, db, domain.OrderRefundStatusPending)
	plan, items := newPlan(f, "20240102030405000003", 2)
	require.NoError(t, repo.CreateWithItems(ctx, plan, items))

	// Item 0 was due yesterday, item 1 in the future
	overdue, err := itemRepo.GetOverdue(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, items[0].ID, overdue[0].ID)
	assert.Equal(t, plan.No, overdue[0].No)
	assert.True(t, overdue[0].FineRate.Equal(plan.FineRate))

	require.NoError(t, itemRepo.UpdateFine(ctx, items[0].ID, decimal.RequireFromString("0.05")))

	paidAt := time.Now().UTC()
	method, paymentNo := "alipay", "2024010200001"
	items[0].PaidAt = &paidAt
	items[0].PaymentMethod = &method
	items[0].PaymentNo = &paymentNo
	plan.PaidAt = &paidAt
	plan.Status = domain.PlanStatusRepaying
	require.NoError(t, repo.RecordPayment(ctx, plan, items[0], true))

	// A second payment of the same item rolls back without touching the plan
	plan.Status = domain.PlanStatusFinished
	err = repo.RecordPayment(ctx, plan, items[0], false)
	assert.ErrorIs(t, err, repository.ErrItemAlreadyPaid)

	got, err := repo.GetByNo(ctx, plan.No)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusRepaying, got.Status)
	require.NotNil(t, got.PaidAt)

	require.NoError(t, itemRepo.UpdateRefundStatus(ctx, items[0].ID, domain.ItemRefundStatusSuccess))

	stored, err := itemRepo.GetByInstallmentID(ctx, plan.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored[0].PaidAt)
	assert.Equal(t, domain.ItemRefundStatusSuccess, stored[0].RefundStatus)
	require.NotNil(t, stored[0].Fine)
	assert.True(t, stored[0].Fine.Equal(decimal.RequireFromString("0.05")))

	overdue, err = itemRepo.GetOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestOrderRepository_RefundRollup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewInstallmentRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	f := seedOrder(t, db, domain.OrderRefundStatusProcessing)
	plan, items := newPlan(f, "20240102030405000004", 1)
	require.NoError(t, repo.CreateWithItems(ctx, plan, items))

	processing, err := repo.ListByOrderRefundStatus(ctx, domain.OrderRefundStatusProcessing)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, plan.No, processing[0].No)

	paidAt := time.Now().UTC()
	method, paymentNo := "wechat", "2024010200002"
	items[0].PaidAt = &paidAt
	items[0].PaymentMethod = &method
	items[0].PaymentNo = &paymentNo
	plan.PaidAt = &paidAt
	plan.Status = domain.PlanStatusFinished
	require.NoError(t, repo.RecordPayment(ctx, plan, items[0], true))
	require.NoError(t, orderRepo.UpdateRefundStatus(ctx, f.order.ID, domain.OrderRefundStatusSuccess))

	order, err := orderRepo.GetByID(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRefundStatusSuccess, order.RefundStatus)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, domain.PaymentMethodInstallment, *order.PaymentMethod)
	require.NotNil(t, order.PaymentNo)
	assert.Equal(t, plan.No, *order.PaymentNo)

	user, err := repository.NewUserRepository(db).GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user.Email, user.Email)

	processing, err = repo.ListByOrderRefundStatus(ctx, domain.OrderRefundStatusProcessing)
	require.NoError(t, err)
	assert.Empty(t, processing)
}
