package dto

import "time"

// BankAccountResponse is one linked bank account
type BankAccountResponse struct {
	ID         uint      `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Balance    string    `json:"balance"`
	Linked     bool      `json:"linked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListBankAccountsResponse lists a user's linked accounts
type ListBankAccountsResponse struct {
	Accounts []BankAccountResponse `json:"accounts"`
	Total    int                   `json:"total"`
}

// SavingsGoalRequest contains the fields needed to create a savings goal
type SavingsGoalRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Description  string `json:"description" validate:"max=1000"`
	TargetAmount string `json:"targetAmount" validate:"required,decimal_amount"`
	TargetDate   string `json:"targetDate" validate:"required"`
	Priority     int    `json:"priority" validate:"omitempty,min=1,max=3"`
}

// SavingsGoalResponse is one savings goal with derived progress fields
type SavingsGoalResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	TargetAmount       string    `json:"targetAmount"`
	CurrentAmount      string    `json:"currentAmount"`
	TargetDate         string    `json:"targetDate"`
	Priority           int       `json:"priority"`
	Status             string    `json:"status"`
	ProgressPercentage float64   `json:"progressPercentage"`
	MonthlyTarget      string    `json:"monthlyTarget"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ContributionRequest records a contribution towards a savings goal
type ContributionRequest struct {
	Amount string `json:"amount" validate:"required,decimal_amount"`
}
