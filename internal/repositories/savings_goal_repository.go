package repositories

import (
	"errors"
	"fmt"

	"centsible/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound = errors.New("savings goal not found")
)

// savingsGoalRepository implements SavingsGoalRepositoryInterface
type savingsGoalRepository struct {
	db *gorm.DB
}

// NewSavingsGoalRepository creates a new savings goal repository
func NewSavingsGoalRepository(db *gorm.DB) SavingsGoalRepositoryInterface {
	return &savingsGoalRepository{
		db: db,
	}
}

// Create creates a new savings goal
func (r *savingsGoalRepository) Create(goal *models.SavingsGoal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create savings goal: %w", err)
	}
	return nil
}

// GetByID retrieves a savings goal by ID
func (r *savingsGoalRepository) GetByID(id uuid.UUID) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := r.db.Where("id = ?", id).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	return &goal, nil
}

// GetByUserID retrieves all savings goals for a user, highest priority first
func (r *savingsGoalRepository) GetByUserID(userID uuid.UUID) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := r.db.Where("user_id = ?", userID).
		Order("priority DESC, target_date ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to get savings goals: %w", err)
	}
	return goals, nil
}

// Update saves the full savings goal
func (r *savingsGoalRepository) Update(goal *models.SavingsGoal) error {
	if err := r.db.Save(goal).Error; err != nil {
		return fmt.Errorf("failed to update savings goal: %w", err)
	}
	return nil
}

// Delete removes a savings goal
func (r *savingsGoalRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.SavingsGoal{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete savings goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
