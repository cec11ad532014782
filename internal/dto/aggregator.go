package dto

import "encoding/json"

// Aggregator wire DTOs. Field names follow the provider's JSON contract;
// monetary values arrive as JSON numbers and are decoded via json.Number so
// no precision is lost before conversion to decimals.

// LinkTokenRequest is the client-facing request to start a link session
type LinkTokenRequest struct {
	Products []string `json:"products" validate:"omitempty,dive,oneof=auth transactions"`
}

// LinkTokenResponse carries the short-lived token the frontend hands to the
// provider's link widget.
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// ExchangeTokenRequest carries the public token returned by the link widget
type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token" validate:"required"`
}

// ExchangeTokenResponse is the provider's answer to a token exchange
type ExchangeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id,omitempty"`
}

// AccountBalances holds the provider's view of an account's balances
type AccountBalances struct {
	Available              json.Number `json:"available"`
	Current                json.Number `json:"current"`
	Limit                  json.Number `json:"limit,omitempty"`
	ISOCurrencyCode        string      `json:"iso_currency_code,omitempty"`
	UnofficialCurrencyCode string      `json:"unofficial_currency_code,omitempty"`
}

// AccountRecord is one account as reported by the provider
type AccountRecord struct {
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	OfficialName string          `json:"official_name,omitempty"`
	Mask         string          `json:"mask,omitempty"`
	Type         string          `json:"type"`
	Subtype      string          `json:"subtype,omitempty"`
	Balances     AccountBalances `json:"balances"`
}

// AccountsResponse is the provider's accounts listing
type AccountsResponse struct {
	Accounts  []AccountRecord `json:"accounts"`
	RequestID string          `json:"request_id,omitempty"`
}

// PersonalFinanceCategory is the provider's two-level category label
type PersonalFinanceCategory struct {
	Primary         string `json:"primary"`
	Detailed        string `json:"detailed"`
	ConfidenceLevel string `json:"confidence_level,omitempty"`
}

// TransactionRecord is one transaction as reported by the provider.
// Positive amounts are money out of the account, negative amounts money in.
type TransactionRecord struct {
	TransactionID           string                   `json:"transaction_id"`
	AccountID               string                   `json:"account_id"`
	Amount                  json.Number              `json:"amount"`
	ISOCurrencyCode         string                   `json:"iso_currency_code,omitempty"`
	Name                    string                   `json:"name"`
	MerchantName            string                   `json:"merchant_name,omitempty"`
	Date                    string                   `json:"date"`
	Datetime                string                   `json:"datetime,omitempty"`
	AuthorizedDate          string                   `json:"authorized_date,omitempty"`
	AuthorizedDatetime      string                   `json:"authorized_datetime,omitempty"`
	Pending                 bool                     `json:"pending"`
	PaymentChannel          string                   `json:"payment_channel,omitempty"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category,omitempty"`
	Category                []string                 `json:"category,omitempty"`
}

// RemovedTransaction identifies a transaction the provider retracted
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id,omitempty"`
}

// SyncPage is one page of the provider's transaction sync stream
type SyncPage struct {
	Added      []TransactionRecord  `json:"added"`
	Modified   []TransactionRecord  `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	NextCursor string               `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
	RequestID  string               `json:"request_id,omitempty"`
}

// AggregatorError is the provider's error envelope
type AggregatorError struct {
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}
