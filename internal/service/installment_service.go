package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/installment-service/internal/config"
	"github.com/segyhp/installment-service/internal/domain"
	"github.com/segyhp/installment-service/internal/repository"
	customError "github.com/segyhp/installment-service/pkg/errors"
	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/utils"

	"go.uber.org/multierr"
)

// PlanCache stores resolved plans. Get returns nil, nil on a miss.
type PlanCache interface {
	Get(ctx context.Context, no string) (*domain.PlanDetail, error)
	Set(ctx context.Context, detail *domain.PlanDetail) error
	Delete(ctx context.Context, no string) error
}

type InstallmentService struct {
	InstallmentRepo repository.InstallmentRepository
	ItemRepo        repository.InstallmentItemRepository
	OrderRepo       repository.OrderRepository
	UserRepo        repository.UserRepository
	cache           PlanCache
	noGenerator     *PlanNoGenerator
	logger          *logger.Logger
	now             func() time.Time
}

func NewInstallmentService(
	installmentRepo repository.InstallmentRepository,
	itemRepo repository.InstallmentItemRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cache PlanCache,
	cfg *config.Config,
	log *logger.Logger,
) *InstallmentService {
	loc := time.Local
	maxAttempts := DefaultNoMaxAttempts
	if cfg != nil {
		loc = cfg.Location()
		maxAttempts = cfg.Installment.NoMaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}

	return &InstallmentService{
		InstallmentRepo: installmentRepo,
		ItemRepo:        itemRepo,
		OrderRepo:       orderRepo,
		UserRepo:        userRepo,
		cache:           cache,
		noGenerator:     NewPlanNoGenerator(installmentRepo, log, loc, maxAttempts),
		logger:          log,
		now:             func() time.Time { return time.Now().In(loc) },
	}
}

// CreatePlan creates an installment plan with its repayment items for an unpaid order.
// A no supplied in the request is kept as is; otherwise one is allocated
// before anything is written.
func (s *InstallmentService) CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error) {
	if request.Count <= 0 {
		return nil, customError.WrapInvalidInstallment("count must be greater than 0")
	}
	if !request.TotalAmount.IsPositive() {
		return nil, customError.WrapInvalidInstallment("total amount must be greater than 0")
	}

	// 1. The order must belong to the buyer and still be unpaid
	order, err := s.OrderRepo.GetByID(ctx, request.OrderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapOrderNotFound(request.OrderID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if order.UserID != request.UserID {
		return nil, customError.WrapInvalidInstallment("order does not belong to user")
	}
	if order.PaidAt != nil {
		return nil, customError.WrapInvalidInstallment("order is already paid")
	}

	// 2. Allocate the installment no
	no := request.No
	if no == "" {
		no, err = s.noGenerator.FindAvailableNo(ctx)
		if errors.Is(err, customError.ErrPlanNoUnavailable) {
			return nil, customError.WrapPlanNoUnavailable()
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	now := s.now()
	plan := &domain.InstallmentPlan{
		ID:          uuid.New(),
		No:          no,
		UserID:      request.UserID,
		OrderID:     request.OrderID,
		TotalAmount: request.TotalAmount,
		Count:       request.Count,
		FeeRate:     request.FeeRate,
		FineRate:    request.FineRate,
		Status:      domain.PlanStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 3. Generate one item per period, first due tomorrow then every 30 days
	firstDueDate := utils.StartOfTomorrow(now)
	bases := utils.SplitAmount(request.TotalAmount, request.Count)
	items := make([]*domain.InstallmentItem, 0, request.Count)
	for sequence, base := range bases {
		items = append(items, &domain.InstallmentItem{
			ID:            uuid.New(),
			InstallmentID: plan.ID,
			Sequence:      sequence,
			Base:          base,
			Fee:           utils.CalculateFee(base, request.FeeRate),
			DueDate:       utils.CalculateDueDate(firstDueDate, sequence),
			RefundStatus:  domain.ItemRefundStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	// 4. Persist plan and items together
	err = s.InstallmentRepo.CreateWithItems(ctx, plan, items)
	if errors.Is(err, repository.ErrDuplicateNo) {
		if request.No != "" {
			return nil, customError.WrapInvalidInstallment("installment no " + no + " already exists")
		}
		// Lost a race with another writer between the existence check and the insert
		return nil, customError.WrapPlanNoUnavailable()
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	plan.Items = items
	return plan, nil
}

// GetPlan returns a plan with its user, order and items
func (s *InstallmentService) GetPlan(ctx context.Context, no string) (*domain.PlanDetail, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, no)
		if err != nil {
			s.logger.Error(ctx, "read installment cache", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	plan, err := s.getPlan(ctx, no)
	if err != nil {
		return nil, err
	}

	items, err := s.ItemRepo.GetByInstallmentID(ctx, plan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	plan.Items = items

	user, err := s.UserRepo.GetByID(ctx, plan.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	order, err := s.OrderRepo.GetByID(ctx, plan.OrderID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	detail := &domain.PlanDetail{InstallmentPlan: plan, User: user, Order: order}

	if s.cache != nil {
		if err := s.cache.Set(ctx, detail); err != nil {
			s.logger.Error(ctx, "write installment cache", err)
		}
	}

	return detail, nil
}

// RefreshRefundStatus rereads the plan's items and marks the order as
// refunded once every item has been refunded. An unfinished refund is a no-op.
func (s *InstallmentService) RefreshRefundStatus(ctx context.Context, plan *domain.InstallmentPlan) error {
	items, err := s.ItemRepo.GetByInstallmentID(ctx, plan.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	plan.Items = items

	if !plan.AllItemsRefunded(items) {
		return nil
	}

	// An empty plan passes vacuously and still marks the order refunded.
	if len(items) == 0 {
		s.logger.Debug(ctx, "installment refund rollup passed without items")
	}

	if err := s.OrderRepo.UpdateRefundStatus(ctx, plan.OrderID, domain.OrderRefundStatusSuccess); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, plan.No)
	return nil
}

// RefreshRefundStatusByNo runs RefreshRefundStatus for the plan with the given no
func (s *InstallmentService) RefreshRefundStatusByNo(ctx context.Context, no string) error {
	plan, err := s.getPlan(ctx, no)
	if err != nil {
		return err
	}

	return s.RefreshRefundStatus(ctx, plan)
}

// PayNextItem settles the earliest unpaid item of a plan
func (s *InstallmentService) PayNextItem(ctx context.Context, no string, request *domain.PayItemRequest) (*domain.InstallmentItem, error) {
	// 1. Load the plan and its items
	plan, err := s.getPlan(ctx, no)
	if err != nil {
		return nil, err
	}

	items, err := s.ItemRepo.GetByInstallmentID(ctx, plan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// 2. Find the earliest unpaid item
	var next *domain.InstallmentItem
	for _, item := range items {
		if !item.IsPaid() {
			next = item
			break
		}
	}
	if next == nil {
		return nil, customError.WrapNoPendingItem(no)
	}

	// 3. Record the payment. The first payment settles the order itself
	now := s.now()
	next.PaidAt = &now
	next.PaymentMethod = &request.PaymentMethod
	next.PaymentNo = &request.PaymentNo

	settleOrder := plan.PaidAt == nil
	if settleOrder {
		plan.PaidAt = &now
	}

	// 4. Advance the plan status
	if next == items[len(items)-1] {
		plan.Status = domain.PlanStatusFinished
	} else if plan.Status == domain.PlanStatusPending {
		plan.Status = domain.PlanStatusRepaying
	}

	if err = s.InstallmentRepo.RecordPayment(ctx, plan, next, settleOrder); err != nil {
		if errors.Is(err, repository.ErrItemAlreadyPaid) {
			return nil, customError.WrapNoPendingItem(no)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, no)
	return next, nil
}

// HandleItemRefund records the gateway's refund result for one item.
// A successful refund triggers the order-level rollup.
func (s *InstallmentService) HandleItemRefund(ctx context.Context, no string, sequence int, success bool) error {
	plan, err := s.getPlan(ctx, no)
	if err != nil {
		return err
	}

	items, err := s.ItemRepo.GetByInstallmentID(ctx, plan.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	var target *domain.InstallmentItem
	for _, item := range items {
		if item.Sequence == sequence {
			target = item
			break
		}
	}
	if target == nil {
		return customError.WrapItemNotFound(no, sequence)
	}
	if !target.IsPaid() {
		return customError.WrapItemNotPaid(no, sequence)
	}

	status := domain.ItemRefundStatusFailed
	if success {
		status = domain.ItemRefundStatusSuccess
	}
	if err = s.ItemRepo.UpdateRefundStatus(ctx, target.ID, status); err != nil {
		return customError.WrapDatabaseError(err)
	}
	s.invalidate(ctx, no)

	if !success {
		s.logger.Warn(ctx, fmt.Sprintf("refund of installment item %d failed", sequence))
		return nil
	}

	return s.RefreshRefundStatus(ctx, plan)
}

// ApplyOverdueFines recomputes the fine of every unpaid overdue item.
// It returns how many items changed.
func (s *InstallmentService) ApplyOverdueFines(ctx context.Context) (int, error) {
	now := s.now()

	items, err := s.ItemRepo.GetOverdue(ctx, now)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	var (
		updated int
		errs    error
	)
	for _, item := range items {
		fine := utils.CalculateFine(item.Base, item.Fee, item.FineRate, utils.OverdueDays(item.DueDate, now))
		if item.Fine != nil && item.Fine.Equal(fine) {
			continue
		}

		if err := s.ItemRepo.UpdateFine(ctx, item.ID, fine); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}
		s.invalidate(ctx, item.No)
		updated++
	}

	if errs != nil {
		return updated, customError.WrapDatabaseError(errs)
	}

	return updated, nil
}

// ReconcileRefunds reruns the refund rollup for every plan whose order
// refund is still processing. It returns how many plans were checked.
func (s *InstallmentService) ReconcileRefunds(ctx context.Context) (int, error) {
	plans, err := s.InstallmentRepo.ListByOrderRefundStatus(ctx, domain.OrderRefundStatusProcessing)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	var errs error
	for _, plan := range plans {
		if err := s.RefreshRefundStatus(s.logger.WithInstallmentNo(ctx, plan.No), plan); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("installment %s: %w", plan.No, err))
		}
	}

	return len(plans), errs
}

// StatusLabels lists the plan statuses with their display labels
func (s *InstallmentService) StatusLabels() []domain.StatusLabel {
	statuses := []domain.PlanStatus{domain.PlanStatusPending, domain.PlanStatusRepaying, domain.PlanStatusFinished}

	labels := make([]domain.StatusLabel, 0, len(statuses))
	for _, status := range statuses {
		labels = append(labels, domain.StatusLabel{Status: status, Label: status.Label()})
	}
	return labels
}

func (s *InstallmentService) getPlan(ctx context.Context, no string) (*domain.InstallmentPlan, error) {
	plan, err := s.InstallmentRepo.GetByNo(ctx, no)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapInstallmentNotFound(no)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return plan, nil
}

func (s *InstallmentService) invalidate(ctx context.Context, no string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, no); err != nil {
		s.logger.Error(ctx, "invalidate installment cache", err)
	}
}
