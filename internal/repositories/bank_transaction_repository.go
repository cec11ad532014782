package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"centsible/internal/dto"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// bankTransactionRepository implements BankTransactionRepositoryInterface
type bankTransactionRepository struct {
	db *gorm.DB
}

// NewBankTransactionRepository creates a new bank transaction repository
func NewBankTransactionRepository(db *gorm.DB) BankTransactionRepositoryInterface {
	return &bankTransactionRepository{
		db: db,
	}
}

// Create creates a bank transaction with its subcategory tags
func (r *bankTransactionRepository) Create(txn *models.BankTransaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create bank transaction: %w", err)
	}
	return nil
}

// CreateBatch inserts a page of transactions in one database transaction.
// The page either lands fully or not at all, so a failed sync can be
// retried from the same cursor without duplicates.
func (r *bankTransactionRepository) CreateBatch(txns []*models.BankTransaction) error {
	if len(txns) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, txn := range txns {
			if err := tx.Create(txn).Error; err != nil {
				return fmt.Errorf("failed to create bank transaction: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a bank transaction with its subcategories
func (r *bankTransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var txn models.BankTransaction
	if err := r.db.Preload("Subcategories").Where("id = ?", id).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}
	return &txn, nil
}

// GetByExternalID retrieves a bank transaction by its provider identifier,
// scoped to the owning user.
func (r *bankTransactionRepository) GetByExternalID(userID uuid.UUID, externalID string) (*models.BankTransaction, error) {
	var txn models.BankTransaction
	if err := r.db.Preload("Subcategories").
		Where("user_id = ? AND external_id = ?", userID, externalID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}
	return &txn, nil
}

// GetByUserID retrieves a user's bank transactions with filters and pagination
func (r *bankTransactionRepository) GetByUserID(userID uuid.UUID, filters dto.TransactionFilters, offset, limit int) ([]models.BankTransaction, int64, error) {
	query := r.db.Model(&models.BankTransaction{}).Where("user_id = ?", userID)

	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", *filters.EndDate)
	}
	if filters.Merchant != "" {
		query = query.Where("LOWER(merchant) LIKE ?", "%"+filters.Merchant+"%")
	}
	if filters.Category != "" {
		subQuery := r.db.Table("bank_transaction_subcategories AS bts").
			Select("bts.bank_transaction_id").
			Joins("JOIN sub_categories sc ON sc.id = bts.sub_category_id").
			Where("LOWER(sc.name) = ?", strings.ToLower(filters.Category))
		query = query.Where("id IN (?)", subQuery)
	}
	switch filters.Type {
	case models.TransactionTypeIncome:
		query = query.Where("amount < 0")
	case models.TransactionTypeExpense:
		query = query.Where("amount >= 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bank transactions: %w", err)
	}

	var txns []models.BankTransaction
	if err := query.Preload("Subcategories").
		Order("transaction_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get bank transactions: %w", err)
	}

	return txns, total, nil
}

// Update saves the full transaction
func (r *bankTransactionRepository) Update(txn *models.BankTransaction) error {
	if err := r.db.Save(txn).Error; err != nil {
		return fmt.Errorf("failed to update bank transaction: %w", err)
	}
	return nil
}

// ReplaceSubcategories swaps a transaction's tags and bumps its timestamp
// in one database transaction.
func (r *bankTransactionRepository) ReplaceSubcategories(txn *models.BankTransaction, subs []models.SubCategory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(txn).Association("Subcategories").Replace(subs); err != nil {
			return fmt.Errorf("failed to replace subcategories: %w", err)
		}
		if err := tx.Model(&models.BankTransaction{}).Where("id = ?", txn.ID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch bank transaction: %w", err)
		}
		txn.Subcategories = subs
		return nil
	})
}

// Delete removes a bank transaction and its tag rows
func (r *bankTransactionRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM bank_transaction_subcategories WHERE bank_transaction_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete transaction tags: %w", err)
		}

		result := tx.Delete(&models.BankTransaction{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete bank transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}
		return nil
	})
}

// DeleteByExternalID removes the transaction the provider retracted. A
// missing row is not an error: removal notices can arrive for transactions
// that were never ingested.
func (r *bankTransactionRepository) DeleteByExternalID(userID uuid.UUID, externalID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM bank_transaction_subcategories WHERE bank_transaction_id IN (SELECT id FROM bank_transactions WHERE user_id = ? AND external_id = ?)",
			userID, externalID,
		).Error; err != nil {
			return fmt.Errorf("failed to delete transaction tags: %w", err)
		}

		if err := tx.Where("user_id = ? AND external_id = ?", userID, externalID).
			Delete(&models.BankTransaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete bank transaction: %w", err)
		}
		return nil
	})
}

// SumExpensesForCategoryMonth totals a user's transactions tagged with any
// subcategory of the category inside the month window. Refunds carry
// negative amounts and reduce the total. The membership subquery counts
// each transaction once even when several of its tags share the category.
func (r *bankTransactionRepository) SumExpensesForCategoryMonth(userID uuid.UUID, categoryID uint, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
	subQuery := r.db.Table("bank_transaction_subcategories AS bts").
		Select("bts.bank_transaction_id").
		Joins("JOIN sub_categories sc ON sc.id = bts.sub_category_id").
		Where("sc.category_id = ?", categoryID)

	var result struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.BankTransaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Where("transaction_date >= ? AND transaction_date <= ?", monthStart, monthEnd).
		Where("id IN (?)", subQuery).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum bank expenses: %w", err)
	}

	return result.Total, nil
}

// CountSimilar counts a user's other transactions with the same merchant
// and an amount within the tolerance window since the given date. Used to
// flag recurring spend.
func (r *bankTransactionRepository) CountSimilar(userID uuid.UUID, merchant string, amount decimal.Decimal, tolerance decimal.Decimal, since time.Time, excludeID uuid.UUID) (int64, error) {
	low := amount.Sub(tolerance)
	high := amount.Add(tolerance)

	var count int64
	err := r.db.Model(&models.BankTransaction{}).
		Where("user_id = ?", userID).
		Where("merchant = ?", merchant).
		Where("amount BETWEEN ? AND ?", low, high).
		Where("transaction_date >= ?", since).
		Where("id <> ?", excludeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count similar transactions: %w", err)
	}

	return count, nil
}
