package repositories

import (
	"testing"
	"time"

	"centsible/internal/database"
	"centsible/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BudgetRepositorySuite defines the test suite for BudgetRepository
type BudgetRepositorySuite struct {
	suite.Suite
	db       *database.DB
	repo     BudgetRepositoryInterface
	testUser *models.User
	category *models.Category
}

func (s *BudgetRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBudgetRepository(s.db.DB)

	s.testUser = database.CreateTestUser(s.T(), s.db, "budget-test@example.com")
	s.category = database.CreateTestCategory(s.T(), s.db, "Transportation", "Gas")
}

func (s *BudgetRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestBudgetRepositorySuite(t *testing.T) {
	suite.Run(t, new(BudgetRepositorySuite))
}

func (s *BudgetRepositorySuite) TestCreate_NormalizesMonth() {
	budget := &models.Budget{
		UserID:        s.testUser.ID,
		CategoryID:    s.category.ID,
		Month:         time.Date(2026, 8, 17, 13, 45, 0, 0, time.UTC),
		PlannedAmount: decimal.NewFromInt(200),
	}

	s.NoError(s.repo.Create(budget))
	s.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), budget.Month)
}

func (s *BudgetRepositorySuite) TestCreate_DuplicateRejected() {
	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	first := &models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(100)}
	s.NoError(s.repo.Create(first))

	dup := &models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(150)}
	s.ErrorIs(s.repo.Create(dup), ErrBudgetExists)
}

func (s *BudgetRepositorySuite) TestGetByUserCategoryMonth_NormalizesLookup() {
	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	budget := &models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(100)}
	s.NoError(s.repo.Create(budget))

	// Mid-month timestamps resolve to the same budget
	found, err := s.repo.GetByUserCategoryMonth(s.testUser.ID, s.category.ID, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(budget.ID, found.ID)
	s.Equal("Transportation", found.Category.Name)
}

func (s *BudgetRepositorySuite) TestGetForUserMonth() {
	other := database.CreateTestCategory(s.T(), s.db, "Medical", "Dental Care")
	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	s.NoError(s.repo.Create(&models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(100)}))
	s.NoError(s.repo.Create(&models.Budget{UserID: s.testUser.ID, CategoryID: other.ID, Month: month, PlannedAmount: decimal.NewFromInt(50)}))
	s.NoError(s.repo.Create(&models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month.AddDate(0, -1, 0), PlannedAmount: decimal.NewFromInt(90)}))

	budgets, err := s.repo.GetForUserMonth(s.testUser.ID, month)
	s.NoError(err)
	s.Len(budgets, 2)
}

func (s *BudgetRepositorySuite) TestUpdateFields() {
	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	budget := &models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(100)}
	s.NoError(s.repo.Create(budget))

	s.NoError(s.repo.UpdateFields(budget.ID, map[string]interface{}{
		"actual_amount": decimal.NewFromInt(85),
		"status":        models.BudgetStatusWarning,
	}))

	loaded, err := s.repo.GetByID(budget.ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(85).Equal(loaded.ActualAmount))
	s.Equal(models.BudgetStatusWarning, loaded.Status)
}

func (s *BudgetRepositorySuite) TestDelete() {
	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	budget := &models.Budget{UserID: s.testUser.ID, CategoryID: s.category.ID, Month: month, PlannedAmount: decimal.NewFromInt(100)}
	s.NoError(s.repo.Create(budget))

	s.NoError(s.repo.Delete(budget.ID))
	s.ErrorIs(s.repo.Delete(budget.ID), ErrBudgetNotFound)
}
