package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMissingExternalID = errors.New("external account ID is required")
)

// BankAccount is one linked external financial account. ExternalID is the
// aggregator's account identifier and is unique within a user's account set.
// Balance is a snapshot overwritten wholesale on every account sync, never
// derived from transactions. NextCursor tracks per-account transaction sync
// progress; empty means the initial backfill has not completed a page yet.
type BankAccount struct {
	ID          uint            `gorm:"primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_bank_accounts_user_external" json:"user_id"`
	ExternalID  string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_bank_accounts_user_external" json:"external_id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	AccessToken *string         `gorm:"type:varchar(255)" json:"-"`
	Balance     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	NextCursor  string          `gorm:"type:text" json:"-"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`

	User         User              `gorm:"foreignKey:UserID" json:"-"`
	Transactions []BankTransaction `gorm:"foreignKey:BankAccountID" json:"-"`
}

func (a *BankAccount) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

func (a *BankAccount) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	a.UpdatedAt = time.Now()
	return a.Validate()
}

func (a *BankAccount) Validate() error {
	if a.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if a.ExternalID == "" {
		return ErrMissingExternalID
	}

	if a.Name == "" {
		return errors.New("account name is required")
	}

	return nil
}

// Token returns the access token to sync this account with, falling back to
// an empty string when the account was linked without its own token.
func (a *BankAccount) Token() string {
	if a.AccessToken == nil {
		return ""
	}
	return *a.AccessToken
}

// NeedsBackfill reports whether the account has never completed a sync page
func (a *BankAccount) NeedsBackfill() bool {
	return a.NextCursor == ""
}

// TableName returns the table name for BankAccount
func (a *BankAccount) TableName() string {
	return "bank_accounts"
}
