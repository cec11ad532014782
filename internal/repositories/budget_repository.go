package repositories

import (
	"errors"
	"fmt"
	"time"

	"centsible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBudgetNotFound = errors.New("budget not found")
	ErrBudgetExists   = errors.New("budget already exists for this category and month")
)

// budgetRepository implements BudgetRepositoryInterface
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *gorm.DB) BudgetRepositoryInterface {
	return &budgetRepository{
		db: db,
	}
}

// Create creates a new budget
func (r *budgetRepository) Create(budget *models.Budget) error {
	if err := r.db.Create(budget).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrBudgetExists
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves a budget by ID with its category
func (r *budgetRepository) GetByID(id uint) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.Preload("Category").Where("id = ?", id).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &budget, nil
}

// GetByUserCategoryMonth retrieves the unique budget for a (user, category,
// month) triple. Month is normalized before lookup.
func (r *budgetRepository) GetByUserCategoryMonth(userID uuid.UUID, categoryID uint, month time.Time) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.Preload("Category").
		Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, models.MonthStart(month)).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &budget, nil
}

// GetForUserMonth retrieves all of a user's budgets for one month
func (r *budgetRepository) GetForUserMonth(userID uuid.UUID, month time.Time) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.Preload("Category").
		Where("user_id = ? AND month = ?", userID, models.MonthStart(month)).
		Order("category_id ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets for month: %w", err)
	}
	return budgets, nil
}

// GetForUserCategory retrieves all of a user's budgets for one category
// across months, newest first.
func (r *budgetRepository) GetForUserCategory(userID uuid.UUID, categoryID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.Preload("Category").
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Order("month DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets for category: %w", err)
	}
	return budgets, nil
}

// Update saves the full budget
func (r *budgetRepository) Update(budget *models.Budget) error {
	if err := r.db.Save(budget).Error; err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

// UpdateFields updates specific budget fields
func (r *budgetRepository) UpdateFields(budgetID uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.Model(&models.Budget{}).Where("id = ?", budgetID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update budget fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// Delete removes a budget
func (r *budgetRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Budget{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}
