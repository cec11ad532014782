package repositories

import (
	"errors"
	"fmt"

	"centsible/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubCategoryNotFound = errors.New("subcategory not found")
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// GetAll retrieves all categories with their subcategories
func (r *categoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Preload("SubCategories").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.Preload("SubCategories").Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetSubCategoryByID retrieves a subcategory by ID
func (r *categoryRepository) GetSubCategoryByID(id uint) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := r.db.Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get subcategory: %w", err)
	}
	return &sub, nil
}

// ActiveSubCategoryIndex returns all active subcategories keyed by name.
// Categorization matches normalized provider labels against this index, so
// a single query per batch replaces one lookup per transaction.
func (r *categoryRepository) ActiveSubCategoryIndex() (map[string]models.SubCategory, error) {
	var subs []models.SubCategory
	if err := r.db.Where("is_active = ?", true).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to get active subcategories: %w", err)
	}

	index := make(map[string]models.SubCategory, len(subs))
	for _, sub := range subs {
		index[sub.Name] = sub
	}
	return index, nil
}

// ActiveSubCategoryNames returns the names of all active subcategories in
// alphabetical order.
func (r *categoryRepository) ActiveSubCategoryNames() ([]string, error) {
	var names []string
	if err := r.db.Model(&models.SubCategory{}).
		Where("is_active = ?", true).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to get active subcategory names: %w", err)
	}
	return names, nil
}
