package services

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"centsible/internal/database"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionGeneratorSuite struct {
	suite.Suite
	db        *database.DB
	generator *transactionGenerator
	userID    uuid.UUID
	accountID uint
}

func TestTransactionGeneratorSuite(t *testing.T) {
	suite.Run(t, new(TransactionGeneratorSuite))
}

func (s *TransactionGeneratorSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	user := database.CreateTestUser(s.T(), s.db, "generator@example.com")
	account := database.CreateTestBankAccount(s.T(), s.db, user.ID, "gen-ext-1")
	database.CreateTestCategory(s.T(), s.db, "Income", "Wages")
	database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries")

	resolver := NewCategoryResolver(repositories.NewCategoryRepository(s.db.DB), logger)
	s.generator = NewTransactionGenerator(resolver).(*transactionGenerator)
	s.userID = user.ID
	s.accountID = account.ID
}

func (s *TransactionGeneratorSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionGeneratorSuite) TestGenerateHistory() {
	endDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	startDate := endDate.AddDate(0, 0, -60)

	transactions, err := s.generator.GenerateHistory(s.userID, s.accountID, startDate, endDate, 40)
	s.Require().NoError(err)
	s.GreaterOrEqual(len(transactions), 40)

	for i, txn := range transactions {
		s.Equal(s.userID, txn.UserID)
		s.Equal(s.accountID, txn.BankAccountID)
		s.True(strings.HasPrefix(txn.ExternalID, "dev-"))
		s.NotEmpty(txn.Merchant)
		s.False(txn.Amount.IsZero())
		s.False(txn.TransactionDate.Before(startDate))
		s.False(txn.TransactionDate.After(endDate.Add(24*time.Hour)))

		if i > 0 {
			s.False(txn.TransactionDate.Before(transactions[i-1].TransactionDate))
		}
	}
}

func (s *TransactionGeneratorSuite) TestGenerateHistory_SalaryCredits() {
	endDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	startDate := endDate.AddDate(0, 0, -90)

	transactions, err := s.generator.GenerateHistory(s.userID, s.accountID, startDate, endDate, 0)
	s.Require().NoError(err)

	salaries := 0
	for _, txn := range transactions {
		if txn.Description != "Direct Deposit - Salary" {
			continue
		}
		salaries++
		s.True(txn.Amount.IsNegative(), "salary must be money in")
		s.Require().Len(txn.Subcategories, 1)
		s.Equal("Wages", txn.Subcategories[0].Name)
	}
	s.GreaterOrEqual(salaries, 5, "90 days should carry at least five pay cycles")
}

func (s *TransactionGeneratorSuite) TestBuildTransaction_TagsSeededSubcategory() {
	profile := merchantProfile{name: "Kroger", subcategory: "Groceries", minAmount: 15, maxAmount: 220}
	date := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	txn, err := s.generator.buildTransaction(s.userID, s.accountID, profile, date)
	s.Require().NoError(err)

	s.Equal("Kroger", txn.Merchant)
	s.True(txn.Amount.GreaterThanOrEqual(decimal.NewFromInt(15)))
	s.True(txn.Amount.LessThanOrEqual(decimal.NewFromInt(220)))
	s.Require().Len(txn.Subcategories, 1)
	s.Equal("Groceries", txn.Subcategories[0].Name)
}

func (s *TransactionGeneratorSuite) TestBuildTransaction_UnknownSubcategoryLeftUntagged() {
	profile := merchantProfile{name: "Delta Air Lines", subcategory: "Flights", minAmount: 120, maxAmount: 650}

	txn, err := s.generator.buildTransaction(s.userID, s.accountID, profile, time.Now().UTC())
	s.Require().NoError(err)
	s.Empty(txn.Subcategories)
}

func (s *TransactionGeneratorSuite) TestRandomTimestamp_WithinRange() {
	startDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		at := s.generator.randomTimestamp(startDate, endDate)
		s.False(at.Before(startDate))
		s.False(at.After(endDate.Add(24*time.Hour)))
	}
}
