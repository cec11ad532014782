package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	TransactionSourceBank  = "bank"
	TransactionSourceStore = "store"

	// UnknownMerchant is the placeholder used when the provider record
	// carries no merchant name.
	UnknownMerchant = "Unknown Merchant"
)

var (
	ErrMissingTransactionDate = errors.New("transaction date is required")
)

// Transaction is the capability interface shared by all transaction
// variants. Each variant exposes its own category source: bank transactions
// are tagged directly, store transactions carry tags on their items.
type Transaction interface {
	TransactionID() uuid.UUID
	Owner() uuid.UUID
	MerchantName() string
	Notes() string
	Date() time.Time
	Value() decimal.Decimal
	Type() string
	Source() string
	CategoryNames() []string
	// PrimaryCategoryID returns the category driving budget reconciliation:
	// the category of the first attached subcategory, first-wins by
	// iteration order. ok is false when the transaction is uncategorized.
	PrimaryCategoryID() (id uint, ok bool)
}

// BankTransaction is a canonical financial event imported from the
// aggregator. Amounts keep the provider's sign convention: positive is
// money out, negative is money in.
type BankTransaction struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	BankAccountID   uint             `gorm:"not null;index" json:"bank_account_id"`
	ExternalID      string           `gorm:"type:varchar(200);uniqueIndex" json:"-"`
	Merchant        string           `gorm:"type:varchar(200);index" json:"merchant"`
	Description     string           `gorm:"type:text" json:"description"`
	TransactionDate time.Time        `gorm:"not null;index" json:"transaction_date"`
	Amount          decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	Balance         *decimal.Decimal `gorm:"type:decimal(10,2)" json:"balance,omitempty"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`

	Subcategories []SubCategory `gorm:"many2many:bank_transaction_subcategories" json:"subcategories,omitempty"`
	BankAccount   BankAccount   `gorm:"foreignKey:BankAccountID" json:"-"`
	User          User          `gorm:"foreignKey:UserID" json:"-"`
}

func (t *BankTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

func (t *BankTransaction) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	t.UpdatedAt = time.Now()
	return t.Validate()
}

func (t *BankTransaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if t.BankAccountID == 0 {
		return errors.New("bank account is required")
	}

	if t.TransactionDate.IsZero() {
		return ErrMissingTransactionDate
	}

	return nil
}

// TableName returns the table name for BankTransaction
func (t *BankTransaction) TableName() string {
	return "bank_transactions"
}

func (t *BankTransaction) TransactionID() uuid.UUID { return t.ID }
func (t *BankTransaction) Owner() uuid.UUID         { return t.UserID }
func (t *BankTransaction) Notes() string            { return t.Description }
func (t *BankTransaction) Date() time.Time          { return t.TransactionDate }
func (t *BankTransaction) Value() decimal.Decimal   { return t.Amount }
func (t *BankTransaction) Source() string           { return TransactionSourceBank }

func (t *BankTransaction) MerchantName() string {
	if t.Merchant == "" {
		return UnknownMerchant
	}
	return t.Merchant
}

// Type derives income/expense from the provider sign convention
// (positive amount = outflow).
func (t *BankTransaction) Type() string {
	if t.Amount.IsNegative() {
		return TransactionTypeIncome
	}
	return TransactionTypeExpense
}

func (t *BankTransaction) CategoryNames() []string {
	names := make([]string, 0, len(t.Subcategories))
	for _, sc := range t.Subcategories {
		names = append(names, sc.Name)
	}
	return names
}

func (t *BankTransaction) PrimaryCategoryID() (uint, bool) {
	if len(t.Subcategories) == 0 {
		return 0, false
	}
	return t.Subcategories[0].CategoryID, true
}
