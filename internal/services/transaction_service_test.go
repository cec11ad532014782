package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"centsible/internal/database"
	"centsible/internal/dto"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceSuite struct {
	suite.Suite
	db       *database.DB
	user     *models.User
	account  *models.BankAccount
	category *models.Category

	txnRepo    repositories.BankTransactionRepositoryInterface
	storeRepo  repositories.StoreTransactionRepositoryInterface
	dispatcher *events.Dispatcher
	service    TransactionServiceInterface
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.user = database.CreateTestUser(s.T(), s.db, "list@example.com")
	s.account = database.CreateTestBankAccount(s.T(), s.db, s.user.ID, "acct-1")
	s.category = database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries")

	s.txnRepo = repositories.NewBankTransactionRepository(s.db.DB)
	s.storeRepo = repositories.NewStoreTransactionRepository(s.db.DB)
	s.dispatcher = events.NewDispatcher(logger)
	s.service = NewTransactionService(s.txnRepo, s.storeRepo, s.dispatcher, logger)
}

func (s *TransactionServiceSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionServiceSuite) createBank(merchant string, amount float64, day int) *models.BankTransaction {
	txn := &models.BankTransaction{
		UserID:          s.user.ID,
		BankAccountID:   s.account.ID,
		ExternalID:      uuid.NewString(),
		Merchant:        merchant,
		TransactionDate: time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC),
		Amount:          decimal.NewFromFloat(amount),
		Subcategories:   []models.SubCategory{s.category.SubCategories[0]},
	}
	s.Require().NoError(s.txnRepo.Create(txn))
	return txn
}

func (s *TransactionServiceSuite) createStore(store string, day int) *models.StoreTransaction {
	txn := &models.StoreTransaction{
		UserID:          s.user.ID,
		StoreName:       store,
		TransactionDate: time.Date(2026, 8, day, 18, 0, 0, 0, time.UTC),
		Items: []models.StoreItem{
			{Name: "Milk", Quantity: 2, UnitPrice: decimal.NewFromFloat(1.50), Subcategories: []models.SubCategory{s.category.SubCategories[0]}},
			{Name: "Bread", Quantity: 1, UnitPrice: decimal.NewFromFloat(2.25)},
		},
	}
	s.Require().NoError(s.storeRepo.CreateWithItems(txn))
	return txn
}

func (s *TransactionServiceSuite) TestListTransactions_MergesSourcesByDate() {
	s.createBank("Shop A", 10, 5)
	s.createStore("Corner Market", 7)
	s.createBank("Shop B", 20, 9)

	response, err := s.service.ListTransactions(s.user.ID, dto.TransactionFilters{}, dto.PaginationParams{})
	s.Require().NoError(err)

	s.Require().Len(response.Transactions, 3)
	s.Equal("Shop B", response.Transactions[0].Merchant)
	s.Equal("Corner Market", response.Transactions[1].Merchant)
	s.Equal("Shop A", response.Transactions[2].Merchant)
	s.Equal(int64(3), response.Pagination.Total)
	s.False(response.Pagination.HasMore)

	// The receipt carries its item lines
	s.Equal(models.TransactionSourceStore, response.Transactions[1].Source)
	s.Len(response.Transactions[1].Items, 2)
	s.Equal("5.25", response.Transactions[1].Amount)
}

func (s *TransactionServiceSuite) TestListTransactions_Pagination() {
	for day := 1; day <= 5; day++ {
		s.createBank("Shop", 10, day)
	}

	first, err := s.service.ListTransactions(s.user.ID, dto.TransactionFilters{}, dto.PaginationParams{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Len(first.Transactions, 2)
	s.True(first.Pagination.HasMore)

	third, err := s.service.ListTransactions(s.user.ID, dto.TransactionFilters{}, dto.PaginationParams{Page: 3, Limit: 2})
	s.Require().NoError(err)
	s.Len(third.Transactions, 1)
	s.False(third.Pagination.HasMore)
}

func (s *TransactionServiceSuite) TestListTransactions_IncomeExcludesStore() {
	s.createBank("Employer", -2500, 1)
	s.createStore("Corner Market", 2)

	response, err := s.service.ListTransactions(s.user.ID,
		dto.TransactionFilters{Type: models.TransactionTypeIncome},
		dto.PaginationParams{},
	)
	s.Require().NoError(err)
	s.Require().Len(response.Transactions, 1)
	s.Equal("Employer", response.Transactions[0].Merchant)
}

func (s *TransactionServiceSuite) TestListTransactions_CategoryFilter() {
	s.createBank("Tagged", 10, 1)

	untagged := &models.BankTransaction{
		UserID:          s.user.ID,
		BankAccountID:   s.account.ID,
		ExternalID:      uuid.NewString(),
		Merchant:        "Untagged",
		TransactionDate: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.NewFromInt(5),
	}
	s.Require().NoError(s.txnRepo.Create(untagged))

	response, err := s.service.ListTransactions(s.user.ID,
		dto.TransactionFilters{Category: "groceries"},
		dto.PaginationParams{},
	)
	s.Require().NoError(err)
	s.Require().Len(response.Transactions, 1)
	s.Equal("Tagged", response.Transactions[0].Merchant)
}

func (s *TransactionServiceSuite) TestGetTransaction_EitherSource() {
	bank := s.createBank("Shop", 10, 1)
	store := s.createStore("Market", 2)

	fromBank, err := s.service.GetTransaction(s.user.ID, bank.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionSourceBank, fromBank.Source)

	fromStore, err := s.service.GetTransaction(s.user.ID, store.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionSourceStore, fromStore.Source)

	intruder := database.CreateTestUser(s.T(), s.db, "intruder@example.com")
	_, err = s.service.GetTransaction(intruder.ID, bank.ID)
	s.ErrorIs(err, repositories.ErrTransactionNotFound)
}

func (s *TransactionServiceSuite) TestDeleteTransaction_PublishesEvent() {
	var got []events.TransactionEvent
	s.dispatcher.Subscribe(func(ctx context.Context, event events.TransactionEvent) {
		got = append(got, event)
	})

	bank := s.createBank("Shop", 10, 1)
	s.Require().NoError(s.service.DeleteTransaction(context.Background(), s.user.ID, bank.ID))

	_, err := s.service.GetTransaction(s.user.ID, bank.ID)
	s.ErrorIs(err, repositories.ErrTransactionNotFound)

	s.Require().Len(got, 1)
	s.Equal(events.OpDeleted, got[0].Op)
	s.Equal(bank.ID, got[0].TransactionID)
}

func (s *TransactionServiceSuite) TestUpdateStoreItem() {
	store := s.createStore("Market", 1)
	itemID := store.Items[0].ID

	quantity := 5
	response, err := s.service.UpdateStoreItem(context.Background(), s.user.ID, store.ID, itemID, dto.UpdateStoreItemRequest{
		Quantity: &quantity,
	})
	s.Require().NoError(err)

	// 5 x 1.50 + 2.25
	s.Equal("9.75", response.Amount)
}

func (s *TransactionServiceSuite) TestDeleteStoreItem() {
	store := s.createStore("Market", 1)

	s.Require().NoError(s.service.DeleteStoreItem(context.Background(), s.user.ID, store.ID, store.Items[0].ID))

	response, err := s.service.GetTransaction(s.user.ID, store.ID)
	s.Require().NoError(err)
	s.Len(response.Items, 1)
	s.Equal("2.25", response.Amount)
}
