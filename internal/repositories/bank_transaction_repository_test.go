package repositories

import (
	"testing"
	"time"

	"centsible/internal/database"
	"centsible/internal/dto"
	"centsible/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BankTransactionRepositorySuite defines the test suite for BankTransactionRepository
type BankTransactionRepositorySuite struct {
	suite.Suite
	db       *database.DB
	repo     BankTransactionRepositoryInterface
	testUser *models.User
	account  *models.BankAccount
	category *models.Category
}

func (s *BankTransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBankTransactionRepository(s.db.DB)

	s.testUser = database.CreateTestUser(s.T(), s.db, "txn-test@example.com")
	s.account = database.CreateTestBankAccount(s.T(), s.db, s.testUser.ID, "ext-acc-1")
	s.category = database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries", "Restaurant")
}

func (s *BankTransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestBankTransactionRepositorySuite(t *testing.T) {
	suite.Run(t, new(BankTransactionRepositorySuite))
}

func (s *BankTransactionRepositorySuite) newTransaction(merchant string, amount float64, date time.Time, subs ...models.SubCategory) *models.BankTransaction {
	return &models.BankTransaction{
		UserID:          s.testUser.ID,
		BankAccountID:   s.account.ID,
		ExternalID:      uuid.NewString(),
		Merchant:        merchant,
		TransactionDate: date,
		Amount:          decimal.NewFromFloat(amount),
		Subcategories:   subs,
	}
}

func (s *BankTransactionRepositorySuite) TestCreateWithTags() {
	txn := s.newTransaction("Whole Foods", 54.20, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), s.category.SubCategories[0])

	s.NoError(s.repo.Create(txn))
	s.NotEqual(uuid.Nil, txn.ID)

	loaded, err := s.repo.GetByID(txn.ID)
	s.NoError(err)
	s.Require().Len(loaded.Subcategories, 1)
	s.Equal("Groceries", loaded.Subcategories[0].Name)
}

func (s *BankTransactionRepositorySuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *BankTransactionRepositorySuite) TestCreateBatch() {
	date := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	txns := []*models.BankTransaction{
		s.newTransaction("Shop A", 10, date),
		s.newTransaction("Shop B", 20, date),
	}

	s.NoError(s.repo.CreateBatch(txns))

	_, total, err := s.repo.GetByUserID(s.testUser.ID, dto.TransactionFilters{}, 0, 10)
	s.NoError(err)
	s.Equal(int64(2), total)
}

func (s *BankTransactionRepositorySuite) TestGetByUserID_TypeFilter() {
	date := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	s.NoError(s.repo.Create(s.newTransaction("Employer", -2500, date)))
	s.NoError(s.repo.Create(s.newTransaction("Shop", 30, date)))

	income, _, err := s.repo.GetByUserID(s.testUser.ID, dto.TransactionFilters{Type: models.TransactionTypeIncome}, 0, 10)
	s.NoError(err)
	s.Require().Len(income, 1)
	s.Equal("Employer", income[0].Merchant)

	expenses, _, err := s.repo.GetByUserID(s.testUser.ID, dto.TransactionFilters{Type: models.TransactionTypeExpense}, 0, 10)
	s.NoError(err)
	s.Require().Len(expenses, 1)
	s.Equal("Shop", expenses[0].Merchant)
}

func (s *BankTransactionRepositorySuite) TestSumExpensesForCategoryMonth() {
	groceries := s.category.SubCategories[0]
	restaurant := s.category.SubCategories[1]

	monthStart := models.MonthStart(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	monthEnd := models.MonthEnd(monthStart)

	s.NoError(s.repo.Create(s.newTransaction("Shop A", 40, monthStart.AddDate(0, 0, 3), groceries)))
	s.NoError(s.repo.Create(s.newTransaction("Diner", 25, monthStart.AddDate(0, 0, 10), restaurant)))
	// Refunds arrive as negative amounts and reduce the spend
	s.NoError(s.repo.Create(s.newTransaction("Refund", -15, monthStart.AddDate(0, 0, 11), groceries)))
	// Outside the month window
	s.NoError(s.repo.Create(s.newTransaction("Shop B", 99, monthStart.AddDate(0, 1, 2), groceries)))

	total, err := s.repo.SumExpensesForCategoryMonth(s.testUser.ID, s.category.ID, monthStart, monthEnd)
	s.NoError(err)
	s.True(decimal.NewFromInt(50).Equal(total), "got %s", total)
}

func (s *BankTransactionRepositorySuite) TestSumExpenses_NoDoubleCountWithTwoTagsSameCategory() {
	groceries := s.category.SubCategories[0]
	restaurant := s.category.SubCategories[1]

	monthStart := models.MonthStart(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	monthEnd := models.MonthEnd(monthStart)

	// Both tags belong to the same category; the amount must count once
	s.NoError(s.repo.Create(s.newTransaction("Deli", 30, monthStart.AddDate(0, 0, 1), groceries, restaurant)))

	total, err := s.repo.SumExpensesForCategoryMonth(s.testUser.ID, s.category.ID, monthStart, monthEnd)
	s.NoError(err)
	s.True(decimal.NewFromInt(30).Equal(total), "got %s", total)
}

func (s *BankTransactionRepositorySuite) TestCountSimilar() {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	target := s.newTransaction("Netflix", 15.99, base)
	s.NoError(s.repo.Create(target))
	s.NoError(s.repo.Create(s.newTransaction("Netflix", 15.99, base.AddDate(0, -1, 0))))
	s.NoError(s.repo.Create(s.newTransaction("Netflix", 16.99, base.AddDate(0, 0, -50))))
	// Outside tolerance
	s.NoError(s.repo.Create(s.newTransaction("Netflix", 45.00, base.AddDate(0, 0, -20))))
	// Different merchant
	s.NoError(s.repo.Create(s.newTransaction("Spotify", 15.99, base.AddDate(0, 0, -20))))
	// Too old
	s.NoError(s.repo.Create(s.newTransaction("Netflix", 15.99, base.AddDate(0, -3, 0))))

	tolerance := decimal.NewFromFloat(15.99).Mul(decimal.NewFromFloat(0.15))
	since := base.AddDate(0, 0, -60)

	count, err := s.repo.CountSimilar(s.testUser.ID, "Netflix", decimal.NewFromFloat(15.99), tolerance, since, target.ID)
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *BankTransactionRepositorySuite) TestReplaceSubcategories() {
	groceries := s.category.SubCategories[0]
	restaurant := s.category.SubCategories[1]

	txn := s.newTransaction("Deli", 12, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), groceries)
	s.NoError(s.repo.Create(txn))

	s.NoError(s.repo.ReplaceSubcategories(txn, []models.SubCategory{restaurant}))

	loaded, err := s.repo.GetByID(txn.ID)
	s.NoError(err)
	s.Require().Len(loaded.Subcategories, 1)
	s.Equal("Restaurant", loaded.Subcategories[0].Name)
}

func (s *BankTransactionRepositorySuite) TestDelete() {
	txn := s.newTransaction("Shop", 10, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), s.category.SubCategories[0])
	s.NoError(s.repo.Create(txn))

	s.NoError(s.repo.Delete(txn.ID))

	_, err := s.repo.GetByID(txn.ID)
	s.ErrorIs(err, ErrTransactionNotFound)

	s.ErrorIs(s.repo.Delete(txn.ID), ErrTransactionNotFound)
}

func (s *BankTransactionRepositorySuite) TestGetByExternalID_ScopedToUser() {
	txn := s.newTransaction("Shop", 10, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))
	s.NoError(s.repo.Create(txn))

	loaded, err := s.repo.GetByExternalID(s.testUser.ID, txn.ExternalID)
	s.NoError(err)
	s.Equal(txn.ID, loaded.ID)

	_, err = s.repo.GetByExternalID(uuid.New(), txn.ExternalID)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *BankTransactionRepositorySuite) TestDeleteByExternalID() {
	txn := s.newTransaction("Shop", 10, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), s.category.SubCategories[0])
	s.NoError(s.repo.Create(txn))

	s.NoError(s.repo.DeleteByExternalID(s.testUser.ID, txn.ExternalID))

	_, err := s.repo.GetByID(txn.ID)
	s.ErrorIs(err, ErrTransactionNotFound)

	// A second removal notice for the same transaction is a no-op
	s.NoError(s.repo.DeleteByExternalID(s.testUser.ID, txn.ExternalID))
}
