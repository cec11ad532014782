package dto

import "time"

// CreateBudgetRequest contains the fields needed to open a budget
type CreateBudgetRequest struct {
	CategoryID    uint   `json:"categoryId" validate:"required"`
	Month         string `json:"month" validate:"required,budget_month"`
	PlannedAmount string `json:"plannedAmount" validate:"required,decimal_amount"`
	Notes         string `json:"notes" validate:"max=1000"`
}

// UpdateBudgetRequest contains mutable budget fields
type UpdateBudgetRequest struct {
	PlannedAmount *string `json:"plannedAmount" validate:"omitempty,decimal_amount"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

// BudgetResponse is one budget with its derived fields
type BudgetResponse struct {
	ID              uint      `json:"id"`
	CategoryID      uint      `json:"categoryId"`
	CategoryName    string    `json:"categoryName"`
	Month           string    `json:"month"`
	PlannedAmount   string    `json:"plannedAmount"`
	ActualAmount    string    `json:"actualAmount"`
	RemainingAmount string    `json:"remainingAmount"`
	RolloverAmount  string    `json:"rolloverAmount"`
	PercentageUsed  float64   `json:"percentageUsed"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BudgetSummaryResponse aggregates a user's budgets for one month
type BudgetSummaryResponse struct {
	Month          string           `json:"month"`
	TotalPlanned   string           `json:"totalPlanned"`
	TotalActual    string           `json:"totalActual"`
	TotalRemaining string           `json:"totalRemaining"`
	OverBudget     int              `json:"overBudgetCount"`
	Warning        int              `json:"warningCount"`
	Budgets        []BudgetResponse `json:"budgets"`
}

// CopyBudgetsRequest asks for the previous month's budgets to be recreated
type CopyBudgetsRequest struct {
	Month           string `json:"month" validate:"required,budget_month"`
	IncludeRollover bool   `json:"includeRollover"`
}

// CopyBudgetsResponse reports how many budgets were copied
type CopyBudgetsResponse struct {
	Month   string `json:"month"`
	Copied  int    `json:"copied"`
	Skipped int    `json:"skipped"`
}
