package database

import (
	"testing"

	"centsible/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db := SetupTestDB(t)

	tables := []string{
		"users", "profiles", "bank_accounts", "categories", "sub_categories",
		"bank_transactions", "store_transactions", "store_items",
		"budgets", "savings_goals",
	}

	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s to exist", table)
	}
}

func TestSeedCategoryTaxonomy(t *testing.T) {
	db := SetupTestDB(t)

	require.NoError(t, db.SeedCategoryTaxonomy())

	var categoryCount, subCount int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categoryCount).Error)
	require.NoError(t, db.Model(&models.SubCategory{}).Count(&subCount).Error)

	assert.Equal(t, int64(len(models.DefaultTaxonomy())), categoryCount)
	assert.Greater(t, subCount, categoryCount)

	// Idempotent on a seeded database
	require.NoError(t, db.SeedCategoryTaxonomy())

	var recount int64
	require.NoError(t, db.Model(&models.Category{}).Count(&recount).Error)
	assert.Equal(t, categoryCount, recount)
}

func TestSeedCategoryTaxonomy_SubcategoryNamesGloballyUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, seed := range models.DefaultTaxonomy() {
		for _, sub := range seed.SubCategories {
			if prev, ok := seen[sub]; ok {
				t.Fatalf("subcategory %q appears under both %q and %q", sub, prev, seed.Name)
			}
			seen[sub] = seed.Name
		}
	}
}
