package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Category is a system-defined root classification (e.g. "food and drink").
// Rows are created once by the taxonomy seed import and never deleted in
// normal operation.
type Category struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsExpense   bool      `gorm:"not null;default:true" json:"is_expense"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	if c.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

// TableName returns the table name for Category
func (c *Category) TableName() string {
	return "categories"
}

// SubCategory is a detailed classification under exactly one Category
// (e.g. "groceries" under "food and drink"). (Name, CategoryID) is unique.
type SubCategory struct {
	ID                uint      `gorm:"primary_key" json:"id"`
	Name              string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sub_categories_name_category" json:"name"`
	Description       string    `gorm:"type:text" json:"description"`
	CategoryID        uint      `gorm:"not null;index;uniqueIndex:idx_sub_categories_name_category" json:"category_id"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	BudgetRecommended bool      `gorm:"not null" json:"budget_recommended"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

func (s *SubCategory) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	return s.Validate()
}

func (s *SubCategory) Validate() error {
	if s.Name == "" {
		return errors.New("subcategory name is required")
	}

	if s.CategoryID == 0 {
		return errors.New("parent category is required")
	}

	return nil
}

// TableName returns the table name for SubCategory
func (s *SubCategory) TableName() string {
	return "sub_categories"
}
