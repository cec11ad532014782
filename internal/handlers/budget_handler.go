package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"centsible/internal/dto"
	"centsible/internal/errors"
	"centsible/internal/models"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/labstack/echo/v4"
)

// BudgetHandler handles monthly budget endpoints
type BudgetHandler struct {
	budgetService services.BudgetServiceInterface
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService services.BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// CreateBudget opens a budget for a category and month
// @Summary Create a budget
// @Tags Budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 409 {object} errors.ErrorResponse "Budget exists - BUDGET_002"
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	budget, err := h.budgetService.CreateBudget(userID, req)
	if err != nil {
		if code, ok := mapBudgetError(err); ok {
			return SendError(c, code)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, budget)
}

// GetMonthlySummary returns all budgets for a month with aggregate totals
// @Summary Get the monthly budget summary
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Success 200 {object} dto.BudgetSummaryResponse
// @Router /budgets [get]
func (h *BudgetHandler) GetMonthlySummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	month := c.QueryParam("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	summary, err := h.budgetService.GetMonthlySummary(userID, month)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidMonth) {
			return SendError(c, errors.ValidationInvalidMonth)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// GetBudget returns one budget
// @Summary Get a budget
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param id path int true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - BUDGET_001"
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	budgetID, err := getUintParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Budget ID must be numeric"))
	}

	budget, err := h.budgetService.GetBudget(userID, budgetID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrBudgetNotFound) {
			return SendError(c, errors.BudgetNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, budget)
}

// UpdateBudget edits a budget's planned amount or notes
// @Summary Update a budget
// @Tags Budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Budget ID"
// @Param request body dto.UpdateBudgetRequest true "Budget fields to update"
// @Success 200 {object} dto.BudgetResponse
// @Router /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	budgetID, err := getUintParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Budget ID must be numeric"))
	}

	var req dto.UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req)
	if err != nil {
		if code, ok := mapBudgetError(err); ok {
			return SendError(c, code)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, budget)
}

// DeleteBudget removes a budget
// @Summary Delete a budget
// @Tags Budgets
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 204 "Deleted"
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	budgetID, err := getUintParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Budget ID must be numeric"))
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		if stderrors.Is(err, repositories.ErrBudgetNotFound) {
			return SendError(c, errors.BudgetNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// CopyPreviousMonth recreates last month's budgets for a target month
// @Summary Copy budgets from the previous month
// @Description Copy each previous-month budget into the target month, optionally rolling leftover amounts into the new planned amounts
// @Tags Budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CopyBudgetsRequest true "Target month and rollover flag"
// @Success 200 {object} dto.CopyBudgetsResponse
// @Failure 422 {object} errors.ErrorResponse "Nothing to copy - BUDGET_004"
// @Router /budgets/copy [post]
func (h *BudgetHandler) CopyPreviousMonth(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CopyBudgetsRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	response, err := h.budgetService.CopyPreviousMonth(userID, req)
	if err != nil {
		if code, ok := mapBudgetError(err); ok {
			return SendError(c, code)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

func mapBudgetError(err error) (errors.ErrorCode, bool) {
	switch {
	case stderrors.Is(err, services.ErrInvalidMonth):
		return errors.ValidationInvalidMonth, true
	case stderrors.Is(err, models.ErrInvalidPlannedAmount):
		return errors.BudgetInvalidAmount, true
	case stderrors.Is(err, services.ErrBudgetCategoryInvalid):
		return errors.BudgetInvalidCategory, true
	case stderrors.Is(err, services.ErrNothingToCopy):
		return errors.BudgetNothingToCopy, true
	case stderrors.Is(err, repositories.ErrBudgetExists):
		return errors.BudgetDuplicate, true
	case stderrors.Is(err, repositories.ErrBudgetNotFound):
		return errors.BudgetNotFound, true
	default:
		return "", false
	}
}
