package services

import (
	"encoding/json"
	"testing"
	"time"

	"centsible/internal/dto"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBankTransaction_DatePrecedence(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		record   dto.TransactionRecord
		expected time.Time
	}{
		{
			name: "authorized datetime wins",
			record: dto.TransactionRecord{
				Amount:             json.Number("10"),
				AuthorizedDatetime: "2026-08-10T14:30:00Z",
				Datetime:           "2026-08-11T09:00:00Z",
				AuthorizedDate:     "2026-08-09",
				Date:               "2026-08-12",
			},
			expected: time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "datetime next",
			record: dto.TransactionRecord{
				Amount:         json.Number("10"),
				Datetime:       "2026-08-11T09:00:00Z",
				AuthorizedDate: "2026-08-09",
				Date:           "2026-08-12",
			},
			expected: time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "authorized date next",
			record: dto.TransactionRecord{
				Amount:         json.Number("10"),
				AuthorizedDate: "2026-08-09",
				Date:           "2026-08-12",
			},
			expected: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "posted date last",
			record: dto.TransactionRecord{
				Amount: json.Number("10"),
				Date:   "2026-08-12",
			},
			expected: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unparseable candidates are skipped",
			record: dto.TransactionRecord{
				Amount:             json.Number("10"),
				AuthorizedDatetime: "not-a-date",
				Date:               "2026-08-12",
			},
			expected: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NormalizeBankTransaction(userID, 1, tt.record)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(txn.TransactionDate), "got %s", txn.TransactionDate)
		})
	}
}

func TestNormalizeBankTransaction_NoDate(t *testing.T) {
	_, err := NormalizeBankTransaction(uuid.New(), 1, dto.TransactionRecord{
		Amount: json.Number("10"),
	})
	assert.ErrorIs(t, err, models.ErrMissingTransactionDate)
}

func TestNormalizeBankTransaction_MerchantFallback(t *testing.T) {
	record := dto.TransactionRecord{
		Amount: json.Number("25.50"),
		Name:   "POS PURCHASE 1234",
		Date:   "2026-08-01",
	}

	txn, err := NormalizeBankTransaction(uuid.New(), 1, record)
	require.NoError(t, err)

	assert.Equal(t, models.UnknownMerchant, txn.Merchant)
	assert.Equal(t, "POS PURCHASE 1234", txn.Description)
	assert.Equal(t, models.UnknownMerchant, txn.MerchantName())
}

func TestNormalizeBankTransaction_AmountAndType(t *testing.T) {
	expense, err := NormalizeBankTransaction(uuid.New(), 1, dto.TransactionRecord{
		Amount:       json.Number("42.17"),
		MerchantName: "Shop",
		Date:         "2026-08-01",
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(42.17).Equal(expense.Amount))
	assert.Equal(t, models.TransactionTypeExpense, expense.Type())

	income, err := NormalizeBankTransaction(uuid.New(), 1, dto.TransactionRecord{
		Amount:       json.Number("-1250.00"),
		MerchantName: "Employer",
		Date:         "2026-08-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeIncome, income.Type())
}

func TestNormalizeBankTransaction_BadAmount(t *testing.T) {
	_, err := NormalizeBankTransaction(uuid.New(), 1, dto.TransactionRecord{
		Amount: json.Number("abc"),
		Date:   "2026-08-01",
	})
	assert.Error(t, err)
}

func TestNormalizeBankAccount(t *testing.T) {
	userID := uuid.New()

	account := NormalizeBankAccount(userID, dto.AccountRecord{
		AccountID: "ext-1",
		Name:      "Everyday Checking",
		Balances: dto.AccountBalances{
			Available: json.Number("95.20"),
			Current:   json.Number("100.45"),
		},
	})

	assert.Equal(t, "ext-1", account.ExternalID)
	assert.Equal(t, "Everyday Checking", account.Name)
	assert.True(t, decimal.NewFromFloat(100.45).Equal(account.Balance))
}

func TestNormalizeBankAccount_AvailableFallback(t *testing.T) {
	account := NormalizeBankAccount(uuid.New(), dto.AccountRecord{
		AccountID:    "ext-2",
		OfficialName: "Premier Savings",
		Balances: dto.AccountBalances{
			Available: json.Number("12.00"),
		},
	})

	assert.Equal(t, "Premier Savings", account.Name)
	assert.True(t, decimal.NewFromInt(12).Equal(account.Balance))
}
