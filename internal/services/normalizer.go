package services

import (
	"fmt"
	"time"

	"centsible/internal/dto"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted from the provider, tried in order
var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeBankTransaction converts a provider transaction record into the
// canonical model. The transaction date is picked by precedence: authorized
// datetime, posted datetime, authorized date, posted date. Records without
// any parseable date are rejected. Missing merchant names fall back to the
// shared placeholder so grouping by merchant stays total.
func NormalizeBankTransaction(userID uuid.UUID, accountID uint, record dto.TransactionRecord) (*models.BankTransaction, error) {
	date, err := pickTransactionDate(record)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(record.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", record.Amount.String(), err)
	}

	merchant := record.MerchantName
	if merchant == "" {
		merchant = models.UnknownMerchant
	}

	return &models.BankTransaction{
		UserID:          userID,
		BankAccountID:   accountID,
		ExternalID:      record.TransactionID,
		Merchant:        merchant,
		Description:     record.Name,
		TransactionDate: date,
		Amount:          amount,
	}, nil
}

// pickTransactionDate applies the provider timestamp precedence
func pickTransactionDate(record dto.TransactionRecord) (time.Time, error) {
	candidates := []string{
		record.AuthorizedDatetime,
		record.Datetime,
		record.AuthorizedDate,
		record.Date,
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if parsed, err := parseProviderTime(candidate); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, models.ErrMissingTransactionDate
}

func parseProviderTime(value string) (time.Time, error) {
	for _, layout := range providerTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// NormalizeBankAccount converts a provider account record into the canonical
// model. The current balance wins over available; a record with neither
// keeps a zero balance.
func NormalizeBankAccount(userID uuid.UUID, record dto.AccountRecord) models.BankAccount {
	balance := decimal.Zero
	if current := record.Balances.Current.String(); current != "" {
		if parsed, err := decimal.NewFromString(current); err == nil {
			balance = parsed
		}
	} else if available := record.Balances.Available.String(); available != "" {
		if parsed, err := decimal.NewFromString(available); err == nil {
			balance = parsed
		}
	}

	name := record.Name
	if name == "" {
		name = record.OfficialName
	}

	return models.BankAccount{
		UserID:     userID,
		ExternalID: record.AccountID,
		Name:       name,
		Balance:    balance,
	}
}
