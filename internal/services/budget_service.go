package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"centsible/internal/dto"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetMonthLayout is the wire format for budget months
const budgetMonthLayout = "2006-01"

var (
	ErrInvalidMonth          = errors.New("invalid month format")
	ErrNothingToCopy         = errors.New("previous month has no budgets to copy")
	ErrBudgetCategoryInvalid = errors.New("budget category does not exist")
)

// BudgetServiceInterface manages planned-versus-actual spend per category
// and month.
type BudgetServiceInterface interface {
	CreateBudget(userID uuid.UUID, req dto.CreateBudgetRequest) (*dto.BudgetResponse, error)
	GetBudget(userID uuid.UUID, budgetID uint) (*dto.BudgetResponse, error)
	UpdateBudget(userID uuid.UUID, budgetID uint, req dto.UpdateBudgetRequest) (*dto.BudgetResponse, error)
	DeleteBudget(userID uuid.UUID, budgetID uint) error
	GetMonthlySummary(userID uuid.UUID, month string) (*dto.BudgetSummaryResponse, error)
	CopyPreviousMonth(userID uuid.UUID, req dto.CopyBudgetsRequest) (*dto.CopyBudgetsResponse, error)
	Reconcile(userID uuid.UUID, categoryID uint, month time.Time) error
	HandleTransactionEvent(ctx context.Context, event events.TransactionEvent)
}

// budgetService implements BudgetServiceInterface. Actual spend is always
// recomputed from stored transactions, never adjusted incrementally, so a
// redelivered or out-of-order event converges to the same totals.
type budgetService struct {
	budgetRepo   repositories.BudgetRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
	txnRepo      repositories.BankTransactionRepositoryInterface
	storeRepo    repositories.StoreTransactionRepositoryInterface
	logger       *slog.Logger
	metrics      *PrometheusMetrics
}

// NewBudgetService creates a budget service
func NewBudgetService(
	budgetRepo repositories.BudgetRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	txnRepo repositories.BankTransactionRepositoryInterface,
	storeRepo repositories.StoreTransactionRepositoryInterface,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) BudgetServiceInterface {
	return &budgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		txnRepo:      txnRepo,
		storeRepo:    storeRepo,
		logger:       logger,
		metrics:      metrics,
	}
}

// CreateBudget opens a budget for a (category, month) pair. Spend already
// recorded for the month is reconciled in immediately, so a budget created
// mid-month starts with the right actuals.
func (s *budgetService) CreateBudget(userID uuid.UUID, req dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	month, err := parseBudgetMonth(req.Month)
	if err != nil {
		return nil, err
	}

	planned, err := decimal.NewFromString(req.PlannedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid planned amount: %w", err)
	}
	if planned.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidPlannedAmount
	}

	if _, err := s.categoryRepo.GetByID(req.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrBudgetCategoryInvalid
		}
		return nil, err
	}

	budget := &models.Budget{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Month:         month,
		PlannedAmount: planned,
		Notes:         req.Notes,
	}
	if err := s.budgetRepo.Create(budget); err != nil {
		return nil, err
	}

	if err := s.Reconcile(userID, req.CategoryID, month); err != nil {
		s.logger.Error("initial budget reconcile failed", "budget_id", budget.ID, "error", err)
	}

	created, err := s.budgetRepo.GetByID(budget.ID)
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(created), nil
}

// GetBudget returns one budget, scoped to its owner
func (s *budgetService) GetBudget(userID uuid.UUID, budgetID uint) (*dto.BudgetResponse, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(budget), nil
}

// UpdateBudget changes the planned amount or notes of a budget
func (s *budgetService) UpdateBudget(userID uuid.UUID, budgetID uint, req dto.UpdateBudgetRequest) (*dto.BudgetResponse, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.PlannedAmount != nil {
		planned, err := decimal.NewFromString(*req.PlannedAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid planned amount: %w", err)
		}
		if planned.LessThanOrEqual(decimal.Zero) {
			return nil, models.ErrInvalidPlannedAmount
		}
		budget.PlannedAmount = planned
		fields["planned_amount"] = planned
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	if len(fields) == 0 {
		return toBudgetResponse(budget), nil
	}

	// A new planned amount can move the budget across a status threshold
	budget.RefreshStatus(time.Now())
	fields["status"] = budget.Status

	if err := s.budgetRepo.UpdateFields(budgetID, fields); err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(updated), nil
}

// DeleteBudget removes a budget, scoped to its owner
func (s *budgetService) DeleteBudget(userID uuid.UUID, budgetID uint) error {
	if _, err := s.ownedBudget(userID, budgetID); err != nil {
		return err
	}
	return s.budgetRepo.Delete(budgetID)
}

// GetMonthlySummary aggregates all of a user's budgets for one month
func (s *budgetService) GetMonthlySummary(userID uuid.UUID, month string) (*dto.BudgetSummaryResponse, error) {
	parsed, err := parseBudgetMonth(month)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgetRepo.GetForUserMonth(userID, parsed)
	if err != nil {
		return nil, err
	}

	summary := &dto.BudgetSummaryResponse{
		Month:   parsed.Format(budgetMonthLayout),
		Budgets: make([]dto.BudgetResponse, 0, len(budgets)),
	}

	totalPlanned := decimal.Zero
	totalActual := decimal.Zero
	for i := range budgets {
		budget := &budgets[i]
		totalPlanned = totalPlanned.Add(budget.PlannedAmount)
		totalActual = totalActual.Add(budget.ActualAmount)

		switch budget.Status {
		case models.BudgetStatusOverBudget:
			summary.OverBudget++
		case models.BudgetStatusWarning:
			summary.Warning++
		}

		summary.Budgets = append(summary.Budgets, *toBudgetResponse(budget))
	}

	summary.TotalPlanned = totalPlanned.StringFixed(2)
	summary.TotalActual = totalActual.StringFixed(2)
	summary.TotalRemaining = totalPlanned.Sub(totalActual).StringFixed(2)

	return summary, nil
}

// CopyPreviousMonth recreates the previous month's budgets for the target
// month. Categories that already have a budget in the target month are
// skipped. With rollover enabled, a positive leftover from the source budget
// is added to the new planned amount and recorded on the copy.
func (s *budgetService) CopyPreviousMonth(userID uuid.UUID, req dto.CopyBudgetsRequest) (*dto.CopyBudgetsResponse, error) {
	target, err := parseBudgetMonth(req.Month)
	if err != nil {
		return nil, err
	}
	previous := target.AddDate(0, -1, 0)

	sources, err := s.budgetRepo.GetForUserMonth(userID, previous)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ErrNothingToCopy
	}

	response := &dto.CopyBudgetsResponse{Month: target.Format(budgetMonthLayout)}

	for i := range sources {
		source := &sources[i]

		_, err := s.budgetRepo.GetByUserCategoryMonth(userID, source.CategoryID, target)
		if err == nil {
			response.Skipped++
			continue
		}
		if !errors.Is(err, repositories.ErrBudgetNotFound) {
			return nil, err
		}

		planned := source.PlannedAmount
		rollover := decimal.Zero
		if req.IncludeRollover {
			if leftover := source.RemainingAmount(); leftover.IsPositive() {
				rollover = leftover
				planned = planned.Add(leftover)
			}
		}

		copied := &models.Budget{
			UserID:         userID,
			CategoryID:     source.CategoryID,
			Month:          target,
			PlannedAmount:  planned,
			RolloverAmount: rollover,
			Notes:          source.Notes,
		}
		if err := s.budgetRepo.Create(copied); err != nil {
			return nil, err
		}
		response.Copied++
	}

	return response, nil
}

// Reconcile recomputes the actual spend of one (category, month) budget from
// bank transactions and receipt items, then refreshes the derived status. A
// missing budget is not an error: spend in unbudgeted categories is simply
// not tracked.
func (s *budgetService) Reconcile(userID uuid.UUID, categoryID uint, month time.Time) error {
	budget, err := s.budgetRepo.GetByUserCategoryMonth(userID, categoryID, month)
	if errors.Is(err, repositories.ErrBudgetNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	monthStart := models.MonthStart(month)
	monthEnd := models.MonthEnd(month)

	bankTotal, err := s.txnRepo.SumExpensesForCategoryMonth(userID, categoryID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	storeTotal, err := s.storeRepo.SumItemTotalsForCategoryMonth(userID, categoryID, monthStart, monthEnd)
	if err != nil {
		return err
	}

	budget.ActualAmount = bankTotal.Add(storeTotal)
	budget.RefreshStatus(time.Now())

	if err := s.budgetRepo.UpdateFields(budget.ID, map[string]interface{}{
		"actual_amount": budget.ActualAmount,
		"status":        budget.Status,
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordBudgetReconcile()
	}
	s.logger.Debug("budget reconciled",
		"budget_id", budget.ID,
		"actual", budget.ActualAmount,
		"status", budget.Status,
	)

	return nil
}

// HandleTransactionEvent reconciles every budget of the event's month. The
// event does not carry category information (for deletions the transaction
// is already gone), so all of the user's budgets for that month are
// recomputed.
func (s *budgetService) HandleTransactionEvent(ctx context.Context, event events.TransactionEvent) {
	if event.Date.IsZero() {
		return
	}

	budgets, err := s.budgetRepo.GetForUserMonth(event.UserID, models.MonthStart(event.Date))
	if err != nil {
		s.logger.Error("budget reconcile lookup failed", "user_id", event.UserID, "error", err)
		return
	}

	for i := range budgets {
		if err := s.Reconcile(event.UserID, budgets[i].CategoryID, budgets[i].Month); err != nil {
			s.logger.Error("budget reconcile failed",
				"budget_id", budgets[i].ID,
				"error", err,
			)
		}
	}
}

func (s *budgetService) ownedBudget(userID uuid.UUID, budgetID uint) (*models.Budget, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, repositories.ErrBudgetNotFound
	}
	return budget, nil
}

func parseBudgetMonth(value string) (time.Time, error) {
	parsed, err := time.Parse(budgetMonthLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return models.MonthStart(parsed), nil
}

func toBudgetResponse(b *models.Budget) *dto.BudgetResponse {
	return &dto.BudgetResponse{
		ID:              b.ID,
		CategoryID:      b.CategoryID,
		CategoryName:    b.Category.Name,
		Month:           b.Month.Format(budgetMonthLayout),
		PlannedAmount:   b.PlannedAmount.StringFixed(2),
		ActualAmount:    b.ActualAmount.StringFixed(2),
		RemainingAmount: b.RemainingAmount().StringFixed(2),
		RolloverAmount:  b.RolloverAmount.StringFixed(2),
		PercentageUsed:  b.PercentageUsed(),
		Status:          b.Status,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
