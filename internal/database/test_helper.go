package database

import (
	"fmt"
	"testing"
	"time"

	"centsible/internal/config"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hashed_password",
		FirstName:    "Test",
		LastName:     "User",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func CreateTestProfile(t *testing.T, db *DB, userID uuid.UUID) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		UserID:   userID,
		Currency: models.CurrencyUSD,
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	return profile
}

func CreateTestBankAccount(t *testing.T, db *DB, userID uuid.UUID, externalID string) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{
		UserID:     userID,
		ExternalID: externalID,
		Name:       "Test Checking",
		Balance:    decimal.NewFromInt(1000),
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}

	return account
}

func CreateTestCategory(t *testing.T, db *DB, name string, subNames ...string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      name,
		IsExpense: true,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	for _, subName := range subNames {
		sub := &models.SubCategory{
			Name:              subName,
			CategoryID:        category.ID,
			IsActive:          true,
			BudgetRecommended: true,
		}
		if err := db.Create(sub).Error; err != nil {
			t.Fatalf("failed to create test subcategory: %v", err)
		}
		category.SubCategories = append(category.SubCategories, *sub)
	}

	return category
}

func CreateTestBudget(t *testing.T, db *DB, userID uuid.UUID, categoryID uint, month time.Time, planned decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:        userID,
		CategoryID:    categoryID,
		Month:         month,
		PlannedAmount: planned,
	}

	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}

	return budget
}

type TestDB struct {
	*DB
	t *testing.T
}

func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	return &TestDB{
		DB: SetupTestDB(t),
		t:  t,
	}
}

func (tdb *TestDB) Cleanup() {
	tdb.t.Helper()
	CleanupTestDB(tdb.t, tdb.DB)
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"bank_transaction_subcategories",
		"store_item_subcategories",
		"store_items",
		"store_transactions",
		"bank_transactions",
		"budgets",
		"savings_goals",
		"sub_categories",
		"categories",
		"bank_accounts",
		"profiles",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
