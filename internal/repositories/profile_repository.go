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
	ErrProfileNotFound = errors.New("profile not found")
)

// profileRepository implements ProfileRepositoryInterface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepositoryInterface {
	return &profileRepository{
		db: db,
	}
}

// Create creates a new profile
func (r *profileRepository) Create(profile *models.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves the profile owned by a user
func (r *profileRepository) GetByUserID(userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// Update saves the full profile
func (r *profileRepository) Update(profile *models.Profile) error {
	if err := r.db.Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdateFields updates specific profile fields
func (r *profileRepository) UpdateFields(userID uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SetAccessToken stores the profile-level aggregator access token. Set once
// a link completes; per-account tokens take precedence where present.
func (r *profileRepository) SetAccessToken(userID uuid.UUID, accessToken string) error {
	return r.UpdateFields(userID, map[string]interface{}{
		"access_token": accessToken,
	})
}
