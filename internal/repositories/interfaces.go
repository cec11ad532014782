package repositories

import (
	"time"

	"centsible/internal/dto"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	CreateWithProfile(user *models.User, profile *models.Profile) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateFields(userID uuid.UUID, fields map[string]interface{}) error
	UpdateLastLogin(userID uuid.UUID) error
	Delete(userID uuid.UUID) error
}

// ProfileRepositoryInterface defines the contract for profile repository operations
type ProfileRepositoryInterface interface {
	Create(profile *models.Profile) error
	GetByUserID(userID uuid.UUID) (*models.Profile, error)
	Update(profile *models.Profile) error
	UpdateFields(userID uuid.UUID, fields map[string]interface{}) error
	SetAccessToken(userID uuid.UUID, accessToken string) error
}

// BankAccountRepositoryInterface defines the contract for bank account repository operations
type BankAccountRepositoryInterface interface {
	Create(account *models.BankAccount) error
	GetByID(id uint) (*models.BankAccount, error)
	GetByUserID(userID uuid.UUID) ([]models.BankAccount, error)
	GetByExternalID(userID uuid.UUID, externalID string) (*models.BankAccount, error)
	ApplySync(creates []models.BankAccount, updates map[uint]BankAccountUpdate) error
	UpdateCursor(accountID uint, cursor string) error
	Delete(id uint) error
}

// BankAccountUpdate carries the mutable fields refreshed during an account sync
type BankAccountUpdate struct {
	Name    string
	Balance decimal.Decimal
}

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	GetAll() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	GetSubCategoryByID(id uint) (*models.SubCategory, error)
	ActiveSubCategoryIndex() (map[string]models.SubCategory, error)
	ActiveSubCategoryNames() ([]string, error)
}

// BankTransactionRepositoryInterface defines the contract for bank transaction repository operations
type BankTransactionRepositoryInterface interface {
	Create(txn *models.BankTransaction) error
	CreateBatch(txns []*models.BankTransaction) error
	GetByID(id uuid.UUID) (*models.BankTransaction, error)
	GetByExternalID(userID uuid.UUID, externalID string) (*models.BankTransaction, error)
	GetByUserID(userID uuid.UUID, filters dto.TransactionFilters, offset, limit int) ([]models.BankTransaction, int64, error)
	Update(txn *models.BankTransaction) error
	ReplaceSubcategories(txn *models.BankTransaction, subs []models.SubCategory) error
	Delete(id uuid.UUID) error
	DeleteByExternalID(userID uuid.UUID, externalID string) error
	SumExpensesForCategoryMonth(userID uuid.UUID, categoryID uint, monthStart, monthEnd time.Time) (decimal.Decimal, error)
	CountSimilar(userID uuid.UUID, merchant string, amount decimal.Decimal, tolerance decimal.Decimal, since time.Time, excludeID uuid.UUID) (int64, error)
}

// StoreTransactionRepositoryInterface defines the contract for store transaction repository operations
type StoreTransactionRepositoryInterface interface {
	CreateWithItems(txn *models.StoreTransaction) error
	GetByID(id uuid.UUID) (*models.StoreTransaction, error)
	GetByUserID(userID uuid.UUID, filters dto.TransactionFilters, offset, limit int) ([]models.StoreTransaction, int64, error)
	UpdateItem(txnID uuid.UUID, item *models.StoreItem) error
	DeleteItem(txnID uuid.UUID, itemID uint) error
	Delete(id uuid.UUID) error
	SumItemTotalsForCategoryMonth(userID uuid.UUID, categoryID uint, monthStart, monthEnd time.Time) (decimal.Decimal, error)
	CountSimilar(userID uuid.UUID, store string, amount decimal.Decimal, tolerance decimal.Decimal, since time.Time, excludeID uuid.UUID) (int64, error)
}

// BudgetRepositoryInterface defines the contract for budget repository operations
type BudgetRepositoryInterface interface {
	Create(budget *models.Budget) error
	GetByID(id uint) (*models.Budget, error)
	GetByUserCategoryMonth(userID uuid.UUID, categoryID uint, month time.Time) (*models.Budget, error)
	GetForUserMonth(userID uuid.UUID, month time.Time) ([]models.Budget, error)
	GetForUserCategory(userID uuid.UUID, categoryID uint) ([]models.Budget, error)
	Update(budget *models.Budget) error
	UpdateFields(budgetID uint, fields map[string]interface{}) error
	Delete(id uint) error
}

// SavingsGoalRepositoryInterface defines the contract for savings goal repository operations
type SavingsGoalRepositoryInterface interface {
	Create(goal *models.SavingsGoal) error
	GetByID(id uuid.UUID) (*models.SavingsGoal, error)
	GetByUserID(userID uuid.UUID) ([]models.SavingsGoal, error)
	Update(goal *models.SavingsGoal) error
	Delete(id uuid.UUID) error
}
