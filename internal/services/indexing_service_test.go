package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"centsible/internal/database"
	"centsible/internal/events"
	"centsible/internal/indexing"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type IndexingServiceSuite struct {
	suite.Suite
	db       *database.DB
	user     *models.User
	account  *models.BankAccount
	category *models.Category

	sink        *indexing.MemorySink
	txnRepo     repositories.BankTransactionRepositoryInterface
	storeRepo   repositories.StoreTransactionRepositoryInterface
	profileRepo repositories.ProfileRepositoryInterface
	service     IndexingServiceInterface
}

func TestIndexingServiceSuite(t *testing.T) {
	suite.Run(t, new(IndexingServiceSuite))
}

func (s *IndexingServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.user = database.CreateTestUser(s.T(), s.db, "index@example.com")
	database.CreateTestProfile(s.T(), s.db, s.user.ID)
	s.account = database.CreateTestBankAccount(s.T(), s.db, s.user.ID, "acct-1")
	s.category = database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries")

	s.sink = indexing.NewMemorySink()
	s.txnRepo = repositories.NewBankTransactionRepository(s.db.DB)
	s.storeRepo = repositories.NewStoreTransactionRepository(s.db.DB)
	s.profileRepo = repositories.NewProfileRepository(s.db.DB)
	s.service = NewIndexingService(s.sink, s.txnRepo, s.storeRepo, s.profileRepo, logger, nil)
}

func (s *IndexingServiceSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *IndexingServiceSuite) createBankTxn(merchant string, amount float64, date time.Time, subs ...models.SubCategory) *models.BankTransaction {
	txn := &models.BankTransaction{
		UserID:          s.user.ID,
		BankAccountID:   s.account.ID,
		ExternalID:      uuid.NewString(),
		Merchant:        merchant,
		TransactionDate: date,
		Amount:          decimal.NewFromFloat(amount),
		Subcategories:   subs,
	}
	s.Require().NoError(s.txnRepo.Create(txn))
	return txn
}

func (s *IndexingServiceSuite) TestIndexBankTransaction() {
	txn := s.createBankTxn("Whole Foods", 54.20,
		time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC),
		s.category.SubCategories[0],
	)

	s.service.HandleTransactionEvent(context.Background(), events.TransactionEvent{
		Op:            events.OpCreated,
		Source:        models.TransactionSourceBank,
		UserID:        s.user.ID,
		TransactionID: txn.ID,
	})

	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Equal(s.user.ID, doc.UserID)

	expected := "Transaction Type: EXPENSE\n" +
		"Date/Time: Monday 10 August 2026 14:30\n" +
		"Time Context: Afternoon | Weekday\n" +
		"Merchant: Whole Foods\n" +
		"Amount: USD 54.20\n" +
		"Category: Groceries"
	s.Equal(expected, doc.Text)

	s.Equal("bank", doc.Metadata["source"])
	s.Equal(s.user.ID.String(), doc.Metadata["user_id"])
	s.Equal("2026-08-10", doc.Metadata["date"])
	s.Equal(54.2, doc.Metadata["amount"])
	s.Equal("expense", doc.Metadata["type"])
	s.Equal(false, doc.Metadata["is_recurring"])
	s.Equal(false, doc.Metadata["is_weekend"])
	s.Equal("USD", doc.Metadata["currency"])
	s.Equal([]string{"Groceries"}, doc.Metadata["categories"])
}

func (s *IndexingServiceSuite) TestIndexBankTransaction_IncomeOnWeekend() {
	// 2026-08-01 is a Saturday
	txn := s.createBankTxn("Employer Inc", -2500,
		time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	)

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), txn))

	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Contains(doc.Text, "Transaction Type: INCOME")
	s.Contains(doc.Text, "Time Context: Morning | Weekend")
	s.Contains(doc.Text, "Amount: USD 2500.00")
	s.Equal(-2500.0, doc.Metadata["amount"])
	s.Equal(true, doc.Metadata["is_weekend"])
}

func (s *IndexingServiceSuite) TestIndexBankTransaction_UsesProfileCurrency() {
	s.Require().NoError(s.profileRepo.UpdateFields(s.user.ID, map[string]interface{}{
		"currency": models.CurrencyEUR,
	}))

	txn := s.createBankTxn("Bakery", 4.50, time.Date(2026, 8, 12, 8, 15, 0, 0, time.UTC))
	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), txn))

	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Contains(doc.Text, "Amount: EUR 4.50")
	s.Equal("EUR", doc.Metadata["currency"])
}

func (s *IndexingServiceSuite) TestIndexBankTransaction_UserNotes() {
	txn := s.createBankTxn("Diner", 32, time.Date(2026, 8, 14, 20, 5, 0, 0, time.UTC))
	txn.Description = "Team dinner during late work session"
	s.Require().NoError(s.txnRepo.Update(txn))

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), txn))

	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Contains(doc.Text, "\nUser Notes: Team dinner during late work session")
}

func (s *IndexingServiceSuite) TestRecurringDetection_SinglePriorMatch() {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	s.createBankTxn("Netflix", 15.99, base.AddDate(0, 0, -30))
	target := s.createBankTxn("Netflix", 15.99, base)

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), target))

	doc, ok := s.sink.Get(target.ID)
	s.Require().True(ok)
	s.Equal(true, doc.Metadata["is_recurring"])
}

func (s *IndexingServiceSuite) TestRecurringDetection_OutsideWindowNotRecurring() {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	s.createBankTxn("Netflix", 15.99, base.AddDate(0, 0, -75))
	target := s.createBankTxn("Netflix", 15.99, base)

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), target))

	doc, ok := s.sink.Get(target.ID)
	s.Require().True(ok)
	s.Equal(false, doc.Metadata["is_recurring"])
}

func (s *IndexingServiceSuite) TestUnknownMerchantNeverRecurring() {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	s.createBankTxn(models.UnknownMerchant, 10, base.AddDate(0, 0, -10))
	target := s.createBankTxn(models.UnknownMerchant, 10, base)

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), target))

	doc, ok := s.sink.Get(target.ID)
	s.Require().True(ok)
	s.Equal(false, doc.Metadata["is_recurring"])
}

func (s *IndexingServiceSuite) TestUpdateReplacesDocument() {
	txn := s.createBankTxn("Old Name", 10, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), txn))

	txn.Merchant = "New Name"
	s.Require().NoError(s.txnRepo.Update(txn))

	s.service.HandleTransactionEvent(context.Background(), events.TransactionEvent{
		Op:            events.OpUpdated,
		Source:        models.TransactionSourceBank,
		UserID:        s.user.ID,
		TransactionID: txn.ID,
	})

	s.Equal(1, s.sink.Len())
	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Contains(doc.Text, "New Name")
}

func (s *IndexingServiceSuite) TestDeleteRemovesDocument() {
	txn := s.createBankTxn("Shop", 10, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.service.IndexBankTransaction(context.Background(), txn))

	s.service.HandleTransactionEvent(context.Background(), events.TransactionEvent{
		Op:            events.OpDeleted,
		Source:        models.TransactionSourceBank,
		TransactionID: txn.ID,
	})

	s.Equal(0, s.sink.Len())
}

func (s *IndexingServiceSuite) TestIndexStoreTransaction() {
	txn := &models.StoreTransaction{
		UserID:          s.user.ID,
		StoreName:       "Corner Market",
		Description:     "Weekly shop",
		TransactionDate: time.Date(2026, 8, 14, 18, 32, 0, 0, time.UTC),
		Items: []models.StoreItem{
			{Name: "Milk", Quantity: 2, UnitPrice: decimal.NewFromFloat(1.50), Subcategories: []models.SubCategory{s.category.SubCategories[0]}},
			{Name: "Bread", Quantity: 1, UnitPrice: decimal.NewFromFloat(2.25)},
		},
	}
	s.Require().NoError(s.storeRepo.CreateWithItems(txn))

	s.service.HandleTransactionEvent(context.Background(), events.TransactionEvent{
		Op:            events.OpCreated,
		Source:        models.TransactionSourceStore,
		UserID:        s.user.ID,
		TransactionID: txn.ID,
	})

	doc, ok := s.sink.Get(txn.ID)
	s.Require().True(ok)
	s.Contains(doc.Text, "Transaction Type: EXPENSE")
	s.Contains(doc.Text, "Time Context: Evening | Weekday")
	s.Contains(doc.Text, "Merchant: Corner Market")
	s.Contains(doc.Text, "Amount: USD 5.25")
	s.Contains(doc.Text, "Retail Location: Corner Market")
	s.Contains(doc.Text, "\nItem Details:")
	s.Contains(doc.Text, "- Milk Qty: 2 @ USD1.50 Total: USD3.00 (Categories: Groceries)")
	s.Contains(doc.Text, "- Bread Qty: 1 @ USD2.25 Total: USD2.25 (Categories: )")
	s.Contains(doc.Text, "Total Items: 2")
	s.Contains(doc.Text, "\nUser Notes: Weekly shop")

	s.Equal("store", doc.Metadata["source"])
	s.Equal(2, doc.Metadata["items"])
	s.Equal("expense", doc.Metadata["type"])
	s.Equal(false, doc.Metadata["is_weekend"])
	s.NotContains(doc.Metadata, "categories")
}

func (s *IndexingServiceSuite) TestIndexStoreTransaction_Recurring() {
	date := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)

	prior := &models.StoreTransaction{
		UserID:          s.user.ID,
		StoreName:       "Corner Market",
		TransactionDate: date.AddDate(0, 0, -14),
		Items: []models.StoreItem{
			{Name: "Milk", Quantity: 2, UnitPrice: decimal.NewFromFloat(1.50)},
		},
	}
	s.Require().NoError(s.storeRepo.CreateWithItems(prior))

	target := &models.StoreTransaction{
		UserID:          s.user.ID,
		StoreName:       "Corner Market",
		TransactionDate: date,
		Items: []models.StoreItem{
			{Name: "Milk", Quantity: 2, UnitPrice: decimal.NewFromFloat(1.50)},
		},
	}
	s.Require().NoError(s.storeRepo.CreateWithItems(target))

	s.Require().NoError(s.service.IndexStoreTransaction(context.Background(), target))

	doc, ok := s.sink.Get(target.ID)
	s.Require().True(ok)
	s.Equal(true, doc.Metadata["is_recurring"])
}
