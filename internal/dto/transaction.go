package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	StartDate *time.Time `query:"startDate"`
	EndDate   *time.Time `query:"endDate"`
	Type      string     `query:"type"`
	Source    string     `query:"source"`
	Merchant  string     `query:"merchant"`
	Category  string     `query:"category"`
}

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// TransactionResponse is the unified read model for both transaction sources
type TransactionResponse struct {
	ID            uuid.UUID           `json:"id"`
	Source        string              `json:"source"`
	Type          string              `json:"type"`
	Merchant      string              `json:"merchant"`
	Description   string              `json:"description,omitempty"`
	Amount        string              `json:"amount"`
	Date          time.Time           `json:"date"`
	Subcategories []string            `json:"subcategories,omitempty"`
	Items         []StoreItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// StoreItemResponse is one itemized receipt line in a transaction response
type StoreItemResponse struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Quantity      int      `json:"quantity"`
	UnitPrice     string   `json:"unitPrice"`
	TotalAmount   string   `json:"totalAmount"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// UpdateStoreItemRequest contains mutable receipt line fields
type UpdateStoreItemRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity  *int    `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice *string `json:"unitPrice" validate:"omitempty,decimal_amount"`
}

// SyncResponse reports the outcome of a transaction sync run
type SyncResponse struct {
	AccountsSynced int `json:"accountsSynced"`
	Added          int `json:"added"`
	Modified       int `json:"modified"`
	Removed        int `json:"removed"`
}
