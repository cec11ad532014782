package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supported preferred currencies
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyJPY = "JPY"
	CurrencyCAD = "CAD"
	CurrencyNGN = "NGN"
)

var (
	ErrInvalidCurrency = errors.New("unsupported currency code")
)

// Profile holds per-user aggregation state: the most recent aggregator
// access token and financial preferences. A nil AccessToken means the user
// has not completed the linking flow. Per-account sync cursors live on
// BankAccount, not here.
type Profile struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	AccessToken   *string         `gorm:"type:varchar(255)" json:"-"`
	MonthlyIncome decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"monthly_income"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Currency == "" {
		p.Currency = CurrencyUSD
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	return p.Validate()
}

func (p *Profile) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	p.UpdatedAt = time.Now()
	return p.Validate()
}

func (p *Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}

	if p.MonthlyIncome.LessThan(decimal.Zero) {
		return errors.New("monthly income cannot be negative")
	}

	return nil
}

// IsLinked reports whether the user has completed the aggregator linking flow
func (p *Profile) IsLinked() bool {
	return p.AccessToken != nil && *p.AccessToken != ""
}

// TableName returns the table name for Profile
func (p *Profile) TableName() string {
	return "profiles"
}

// IsValidCurrency checks if the currency code is supported
func IsValidCurrency(currency string) bool {
	switch currency {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY, CurrencyCAD, CurrencyNGN:
		return true
	default:
		return false
	}
}
