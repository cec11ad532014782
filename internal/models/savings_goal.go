package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusPaused    = "paused"
	GoalStatusCancelled = "cancelled"

	GoalPriorityLow    = 1
	GoalPriorityMedium = 2
	GoalPriorityHigh   = 3
)

// SavingsGoal tracks a named savings target. Goals are independent of
// transaction ingestion; contributions are recorded explicitly.
type SavingsGoal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"type:varchar(200);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"current_amount"`
	TargetDate    time.Time       `gorm:"type:date;not null" json:"target_date"`
	Priority      int             `gorm:"not null;default:1" json:"priority"`
	Status        string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (g *SavingsGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}

	if g.Status == "" {
		g.Status = GoalStatusActive
	}
	if g.Priority == 0 {
		g.Priority = GoalPriorityLow
	}

	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}

	return g.Validate()
}

func (g *SavingsGoal) Validate() error {
	if g.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if g.Name == "" {
		return errors.New("goal name is required")
	}

	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("target amount must be greater than zero")
	}

	return nil
}

// ProgressPercentage returns current savings as a percentage of the target
func (g *SavingsGoal) ProgressPercentage() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// MonthlyTarget returns the recommended monthly contribution to reach the
// goal by its target date, zero when the date has passed.
func (g *SavingsGoal) MonthlyTarget(now time.Time) decimal.Decimal {
	monthsRemaining := (g.TargetDate.Year()*12 + int(g.TargetDate.Month())) -
		(now.Year()*12 + int(now.Month()))
	if monthsRemaining <= 0 {
		return decimal.Zero
	}

	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return remaining.Div(decimal.NewFromInt(int64(monthsRemaining))).Round(2)
}

// AddContribution records a contribution and completes the goal when the
// target is reached.
func (g *SavingsGoal) AddContribution(amount decimal.Decimal) {
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = GoalStatusCompleted
	}
}

// TableName returns the table name for SavingsGoal
func (g *SavingsGoal) TableName() string {
	return "savings_goals"
}
