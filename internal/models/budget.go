package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BudgetStatusOnTrack    = "on_track"
	BudgetStatusWarning    = "warning"
	BudgetStatusOverBudget = "over_budget"
	BudgetStatusCompleted  = "completed"

	// budgetWarningThreshold is the percentage of planned spend at which a
	// budget flips to warning.
	budgetWarningThreshold = 80.0
)

var (
	ErrInvalidPlannedAmount = errors.New("planned amount must be greater than zero")
)

// Budget tracks planned versus actual spend for one (user, category, month)
// triple. Month is normalized to the first day of the month. ActualAmount is
// derived and written only by the budget reconciler.
type Budget struct {
	ID             uint            `gorm:"primary_key" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month" json:"user_id"`
	CategoryID     uint            `gorm:"not null;uniqueIndex:idx_budgets_user_category_month" json:"category_id"`
	Month          time.Time       `gorm:"type:date;not null;index;uniqueIndex:idx_budgets_user_category_month" json:"month"`
	PlannedAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"planned_amount"`
	ActualAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"actual_amount"`
	RolloverAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"rollover_amount"`
	Status         string          `gorm:"type:varchar(20);not null;default:'on_track';index" json:"status"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BudgetStatusOnTrack
	}

	b.Month = MonthStart(b.Month)

	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}

	return b.Validate()
}

func (b *Budget) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	b.UpdatedAt = time.Now()
	return b.Validate()
}

func (b *Budget) Validate() error {
	if b.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if b.CategoryID == 0 {
		return errors.New("category is required")
	}

	if b.Month.IsZero() {
		return errors.New("month is required")
	}

	if b.PlannedAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidPlannedAmount
	}

	return nil
}

// RemainingAmount returns planned minus actual spend
func (b *Budget) RemainingAmount() decimal.Decimal {
	return b.PlannedAmount.Sub(b.ActualAmount)
}

// PercentageUsed returns actual as a percentage of planned, 0 when planned
// is zero.
func (b *Budget) PercentageUsed() float64 {
	if b.PlannedAmount.IsZero() {
		return 0
	}
	pct, _ := b.ActualAmount.Div(b.PlannedAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// RefreshStatus recomputes the derived status field. A budget whose month
// has fully passed is completed regardless of percentage.
func (b *Budget) RefreshStatus(now time.Time) {
	pct := b.PercentageUsed()
	switch {
	case pct > 100:
		b.Status = BudgetStatusOverBudget
	case pct >= budgetWarningThreshold:
		b.Status = BudgetStatusWarning
	default:
		b.Status = BudgetStatusOnTrack
	}

	if now.After(MonthEnd(b.Month)) {
		b.Status = BudgetStatusCompleted
	}
}

// TableName returns the table name for Budget
func (b *Budget) TableName() string {
	return "budgets"
}

// MonthStart truncates a timestamp to the first day of its month (UTC)
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last instant before the following month starts
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
