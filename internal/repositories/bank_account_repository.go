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
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrBankAccountExists   = errors.New("bank account already linked")
)

// bankAccountRepository implements BankAccountRepositoryInterface
type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db *gorm.DB) BankAccountRepositoryInterface {
	return &bankAccountRepository{
		db: db,
	}
}

// Create creates a new bank account
func (r *bankAccountRepository) Create(account *models.BankAccount) error {
	if err := r.db.Create(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrBankAccountExists
		}
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

// GetByID retrieves a bank account by ID
func (r *bankAccountRepository) GetByID(id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &account, nil
}

// GetByUserID retrieves all bank accounts for a user
func (r *bankAccountRepository) GetByUserID(userID uuid.UUID) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get bank accounts for user: %w", err)
	}
	return accounts, nil
}

// GetByExternalID retrieves one of a user's accounts by its provider ID.
// External IDs are only unique per user, so the lookup is always scoped.
func (r *bankAccountRepository) GetByExternalID(userID uuid.UUID, externalID string) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.Where("user_id = ? AND external_id = ?", userID, externalID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account by external id: %w", err)
	}
	return &account, nil
}

// ApplySync persists one account sync pass: balance and name refreshes for
// known accounts keyed by internal ID, plus inserts for newly discovered
// ones. Both run in a single transaction so a failed pass leaves the mirror
// untouched.
func (r *bankAccountRepository) ApplySync(creates []models.BankAccount, updates map[uint]BankAccountUpdate) error {
	if len(creates) == 0 && len(updates) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, update := range updates {
			fields := map[string]interface{}{
				"name":       update.Name,
				"balance":    update.Balance,
				"updated_at": time.Now(),
			}
			if err := tx.Model(&models.BankAccount{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update bank account %d: %w", id, err)
			}
		}

		for i := range creates {
			if err := tx.Create(&creates[i]).Error; err != nil {
				if isDuplicateKeyError(err) {
					return ErrBankAccountExists
				}
				return fmt.Errorf("failed to create bank account %s: %w", creates[i].ExternalID, err)
			}
		}
		return nil
	})
}

// UpdateCursor persists the sync cursor for an account. Called after every
// page so an aborted sync resumes from the last durable position.
func (r *bankAccountRepository) UpdateCursor(accountID uint, cursor string) error {
	result := r.db.Model(&models.BankAccount{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"next_cursor": cursor,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update cursor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

// Delete removes a bank account
func (r *bankAccountRepository) Delete(id uint) error {
	result := r.db.Delete(&models.BankAccount{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}
