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
	ErrStoreItemNotFound = errors.New("store item not found")
)

// storeTransactionRepository implements StoreTransactionRepositoryInterface
type storeTransactionRepository struct {
	db *gorm.DB
}

// NewStoreTransactionRepository creates a new store transaction repository
func NewStoreTransactionRepository(db *gorm.DB) StoreTransactionRepositoryInterface {
	return &storeTransactionRepository{
		db: db,
	}
}

// CreateWithItems inserts a receipt transaction and all its items
// atomically. The parent amount is derived from the items by the model
// hooks before insert.
func (r *storeTransactionRepository) CreateWithItems(txn *models.StoreTransaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("failed to create store transaction: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a store transaction with items and their tags
func (r *storeTransactionRepository) GetByID(id uuid.UUID) (*models.StoreTransaction, error) {
	var txn models.StoreTransaction
	if err := r.db.Preload("Items.Subcategories").Where("id = ?", id).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get store transaction: %w", err)
	}
	return &txn, nil
}

// GetByUserID retrieves a user's store transactions with filters and pagination
func (r *storeTransactionRepository) GetByUserID(userID uuid.UUID, filters dto.TransactionFilters, offset, limit int) ([]models.StoreTransaction, int64, error) {
	query := r.db.Model(&models.StoreTransaction{}).Where("user_id = ?", userID)

	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", *filters.EndDate)
	}
	if filters.Merchant != "" {
		query = query.Where("LOWER(store_name) LIKE ?", "%"+filters.Merchant+"%")
	}
	if filters.Category != "" {
		subQuery := r.db.Table("store_items AS si").
			Select("si.transaction_id").
			Joins("JOIN store_item_subcategories sis ON sis.store_item_id = si.id").
			Joins("JOIN sub_categories sc ON sc.id = sis.sub_category_id").
			Where("LOWER(sc.name) = ?", strings.ToLower(filters.Category))
		query = query.Where("id IN (?)", subQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count store transactions: %w", err)
	}

	var txns []models.StoreTransaction
	if err := query.Preload("Items.Subcategories").
		Order("transaction_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get store transactions: %w", err)
	}

	return txns, total, nil
}

// UpdateItem saves a mutated receipt line and re-derives the parent amount
// in the same database transaction, so the stored total never drifts from
// the items.
func (r *storeTransactionRepository) UpdateItem(txnID uuid.UUID, item *models.StoreItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StoreItem
		if err := tx.Where("id = ? AND transaction_id = ?", item.ID, txnID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStoreItemNotFound
			}
			return fmt.Errorf("failed to get store item: %w", err)
		}

		item.TransactionID = txnID
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("failed to update store item: %w", err)
		}

		return r.refreshParentAmount(tx, txnID)
	})
}

// DeleteItem removes a receipt line and re-derives the parent amount in the
// same database transaction.
func (r *storeTransactionRepository) DeleteItem(txnID uuid.UUID, itemID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM store_item_subcategories WHERE store_item_id = ?", itemID).Error; err != nil {
			return fmt.Errorf("failed to delete item tags: %w", err)
		}

		result := tx.Where("id = ? AND transaction_id = ?", itemID, txnID).Delete(&models.StoreItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete store item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStoreItemNotFound
		}

		return r.refreshParentAmount(tx, txnID)
	})
}

// refreshParentAmount recomputes the parent's derived amount from the
// current item rows.
func (r *storeTransactionRepository) refreshParentAmount(tx *gorm.DB, txnID uuid.UUID) error {
	var result struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.StoreItem{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("transaction_id = ?", txnID).
		Scan(&result).Error; err != nil {
		return fmt.Errorf("failed to sum item totals: %w", err)
	}

	if err := tx.Model(&models.StoreTransaction{}).Where("id = ?", txnID).Updates(map[string]interface{}{
		"amount":     result.Total,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fmt.Errorf("failed to refresh store transaction amount: %w", err)
	}

	return nil
}

// Delete removes a store transaction, its items and their tag rows
func (r *storeTransactionRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM store_item_subcategories WHERE store_item_id IN
			(SELECT id FROM store_items WHERE transaction_id = ?)`, id).Error; err != nil {
			return fmt.Errorf("failed to delete item tags: %w", err)
		}

		if err := tx.Where("transaction_id = ?", id).Delete(&models.StoreItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete store items: %w", err)
		}

		result := tx.Delete(&models.StoreTransaction{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete store transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}
		return nil
	})
}

// SumItemTotalsForCategoryMonth totals a user's receipt item amounts for
// items tagged with any subcategory of the category inside the month
// window. Summing at item granularity lets a mixed-category receipt split
// across budgets.
func (r *storeTransactionRepository) SumItemTotalsForCategoryMonth(userID uuid.UUID, categoryID uint, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
	subQuery := r.db.Table("store_item_subcategories AS sis").
		Select("sis.store_item_id").
		Joins("JOIN sub_categories sc ON sc.id = sis.sub_category_id").
		Where("sc.category_id = ?", categoryID)

	var result struct {
		Total decimal.Decimal
	}
	err := r.db.Table("store_items AS si").
		Select("COALESCE(SUM(si.total_amount), 0) AS total").
		Joins("JOIN store_transactions st ON st.id = si.transaction_id").
		Where("st.user_id = ?", userID).
		Where("st.transaction_date >= ? AND st.transaction_date <= ?", monthStart, monthEnd).
		Where("si.id IN (?)", subQuery).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum store item totals: %w", err)
	}

	return result.Total, nil
}

// CountSimilar counts a user's other receipts at the same store with an
// amount within the tolerance window since the given date. Used to flag
// recurring spend.
func (r *storeTransactionRepository) CountSimilar(userID uuid.UUID, store string, amount decimal.Decimal, tolerance decimal.Decimal, since time.Time, excludeID uuid.UUID) (int64, error) {
	low := amount.Sub(tolerance)
	high := amount.Add(tolerance)

	var count int64
	err := r.db.Model(&models.StoreTransaction{}).
		Where("user_id = ?", userID).
		Where("store_name = ?", store).
		Where("amount BETWEEN ? AND ?", low, high).
		Where("transaction_date >= ?", since).
		Where("id <> ?", excludeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count similar store transactions: %w", err)
	}

	return count, nil
}
