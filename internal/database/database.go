package database

import (
	"fmt"
	"log"
	"time"

	"centsible/internal/config"
	"centsible/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.BankAccount{},
		&models.Category{},
		&models.SubCategory{},
		&models.BankTransaction{},
		&models.StoreTransaction{},
		&models.StoreItem{},
		&models.Budget{},
		&models.SavingsGoal{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON users(deleted_at) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_profiles_user_id ON profiles(user_id)",
		// Bank account indexes
		"CREATE INDEX IF NOT EXISTS idx_bank_accounts_user_id ON bank_accounts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_bank_accounts_external_id ON bank_accounts(external_id)",
		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_bank_transactions_user_id ON bank_transactions(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_bank_transactions_account_id ON bank_transactions(bank_account_id)",
		"CREATE INDEX IF NOT EXISTS idx_bank_transactions_date ON bank_transactions(transaction_date)",
		"CREATE INDEX IF NOT EXISTS idx_bank_transactions_merchant_lower ON bank_transactions(LOWER(merchant))",
		"CREATE INDEX IF NOT EXISTS idx_store_transactions_user_id ON store_transactions(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_store_transactions_date ON store_transactions(transaction_date)",
		"CREATE INDEX IF NOT EXISTS idx_store_items_transaction_id ON store_items(transaction_id)",
		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_sub_categories_category_id ON sub_categories(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_sub_categories_is_active ON sub_categories(is_active) WHERE is_active = true",
		// Budget indexes
		"CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_budgets_month ON budgets(month)",
		"CREATE INDEX IF NOT EXISTS idx_budgets_status ON budgets(status)",
		"CREATE INDEX IF NOT EXISTS idx_savings_goals_user_id ON savings_goals(user_id)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// SeedCategoryTaxonomy inserts the default category taxonomy when the
// categories table is empty. Subcategory names are unique per category and
// match the provider's detailed category labels after normalization.
func (db *DB) SeedCategoryTaxonomy() error {
	var count int64
	if err := db.DB.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		for _, seed := range models.DefaultTaxonomy() {
			category := models.Category{
				Name:      seed.Name,
				IsExpense: seed.IsExpense,
			}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", seed.Name, err)
			}

			for _, subName := range seed.SubCategories {
				sub := models.SubCategory{
					Name:              subName,
					CategoryID:        category.ID,
					IsActive:          true,
					BudgetRecommended: seed.IsExpense,
				}
				if err := tx.Create(&sub).Error; err != nil {
					return fmt.Errorf("failed to seed subcategory %s: %w", subName, err)
				}
			}
		}
		return nil
	})
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Get the underlying sql.DB for migration runner
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Run SQL-based migrations using golang-migrate if enabled
	if err := RunMigrationsIfEnabled(sqlDB); err != nil {
		log.Printf("Warning: migration runner failed: %v", err)
		log.Println("Falling back to GORM AutoMigrate...")

		// Fallback to GORM AutoMigrate
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	if err := db.SeedCategoryTaxonomy(); err != nil {
		log.Printf("Warning: failed to seed category taxonomy: %v", err)
	}

	log.Println("Database initialized successfully")

	return db, nil
}
