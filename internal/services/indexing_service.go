package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"centsible/internal/events"
	"centsible/internal/indexing"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// embeddingDateLayout renders transaction dates the way the documents
	// are queried in natural language.
	embeddingDateLayout = "Monday 2 January 2006 15:04"

	// Recurrence detection window and minimum prior occurrences
	recurringLookbackDays = 60
	recurringMinMatches   = 1
)

var recurringTolerance = decimal.NewFromFloat(0.15)

// IndexingServiceInterface mirrors committed transactions into the document
// sink that backs semantic search.
type IndexingServiceInterface interface {
	HandleTransactionEvent(ctx context.Context, event events.TransactionEvent)
	IndexBankTransaction(ctx context.Context, txn *models.BankTransaction) error
	IndexStoreTransaction(ctx context.Context, txn *models.StoreTransaction) error
}

// indexingService implements IndexingServiceInterface. Updates are written
// as delete-then-insert so redelivered events stay idempotent.
type indexingService struct {
	sink        indexing.DocumentSink
	txnRepo     repositories.BankTransactionRepositoryInterface
	storeRepo   repositories.StoreTransactionRepositoryInterface
	profileRepo repositories.ProfileRepositoryInterface
	logger      *slog.Logger
	metrics     *PrometheusMetrics
}

// NewIndexingService creates an indexing service
func NewIndexingService(
	sink indexing.DocumentSink,
	txnRepo repositories.BankTransactionRepositoryInterface,
	storeRepo repositories.StoreTransactionRepositoryInterface,
	profileRepo repositories.ProfileRepositoryInterface,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) IndexingServiceInterface {
	return &indexingService{
		sink:        sink,
		txnRepo:     txnRepo,
		storeRepo:   storeRepo,
		profileRepo: profileRepo,
		logger:      logger,
		metrics:     metrics,
	}
}

// HandleTransactionEvent reacts to a committed transaction mutation.
// Failures are logged, not propagated: the index trails the store and can
// be rebuilt, so an indexing problem must never fail ingestion.
func (s *indexingService) HandleTransactionEvent(ctx context.Context, event events.TransactionEvent) {
	var err error

	switch event.Op {
	case events.OpDeleted:
		err = s.sink.DeleteByTransactionID(ctx, event.TransactionID)
		if err == nil && s.metrics != nil {
			s.metrics.RecordDocumentIndexed("deleted")
		}
	case events.OpCreated, events.OpUpdated:
		err = s.index(ctx, event)
		if err == nil && s.metrics != nil {
			s.metrics.RecordDocumentIndexed(event.Op)
		}
	}

	if err != nil {
		s.logger.Error("document indexing failed",
			"op", event.Op,
			"transaction_id", event.TransactionID,
			"error", err,
		)
	}
}

func (s *indexingService) index(ctx context.Context, event events.TransactionEvent) error {
	switch event.Source {
	case models.TransactionSourceBank:
		txn, err := s.txnRepo.GetByID(event.TransactionID)
		if err != nil {
			return err
		}
		return s.IndexBankTransaction(ctx, txn)
	case models.TransactionSourceStore:
		txn, err := s.storeRepo.GetByID(event.TransactionID)
		if err != nil {
			return err
		}
		return s.IndexStoreTransaction(ctx, txn)
	default:
		return fmt.Errorf("unknown transaction source %q", event.Source)
	}
}

// IndexBankTransaction writes the embedding document for a bank transaction,
// flagging spend that recurs at the same merchant for a similar amount.
func (s *indexingService) IndexBankTransaction(ctx context.Context, txn *models.BankTransaction) error {
	recurring, err := s.isRecurringBank(txn)
	if err != nil {
		return err
	}
	currency := s.currencyFor(txn.UserID)

	components := embeddingComponents(txn, currency)
	components = append(components, fmt.Sprintf("Category: %s", strings.Join(txn.CategoryNames(), " | ")))
	if txn.Description != "" {
		components = append(components, fmt.Sprintf("\nUser Notes: %s", txn.Description))
	}

	metadata := embeddingMetadata(txn, currency, recurring)
	metadata["categories"] = txn.CategoryNames()

	doc := indexing.Document{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Text:          strings.Join(components, "\n"),
		Metadata:      metadata,
	}

	return s.upsert(ctx, doc)
}

// IndexStoreTransaction writes the embedding document for a receipt,
// including its item lines.
func (s *indexingService) IndexStoreTransaction(ctx context.Context, txn *models.StoreTransaction) error {
	recurring, err := s.isRecurringStore(txn)
	if err != nil {
		return err
	}
	currency := s.currencyFor(txn.UserID)

	components := embeddingComponents(txn, currency)
	components = append(components, fmt.Sprintf("Retail Location: %s", txn.MerchantName()))
	components = append(components, "\nItem Details:")
	for i := range txn.Items {
		item := &txn.Items[i]
		names := make([]string, 0, len(item.Subcategories))
		for _, sc := range item.Subcategories {
			names = append(names, sc.Name)
		}
		components = append(components, fmt.Sprintf("- %s Qty: %d @ %s%s Total: %s%s (Categories: %s)",
			item.Name,
			item.Quantity,
			currency, item.UnitPrice.StringFixed(2),
			currency, item.TotalAmount.StringFixed(2),
			strings.Join(names, " | "),
		))
	}
	components = append(components, fmt.Sprintf("Total Items: %d", len(txn.Items)))
	if txn.Description != "" {
		components = append(components, fmt.Sprintf("\nUser Notes: %s", txn.Description))
	}

	metadata := embeddingMetadata(txn, currency, recurring)
	metadata["items"] = len(txn.Items)

	doc := indexing.Document{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Text:          strings.Join(components, "\n"),
		Metadata:      metadata,
	}

	return s.upsert(ctx, doc)
}

func (s *indexingService) upsert(ctx context.Context, doc indexing.Document) error {
	if err := s.sink.DeleteByTransactionID(ctx, doc.TransactionID); err != nil {
		return err
	}
	return s.sink.Insert(ctx, doc)
}

// currencyFor resolves the user's display currency, defaulting when the
// profile cannot be loaded.
func (s *indexingService) currencyFor(userID uuid.UUID) string {
	if s.profileRepo == nil {
		return models.CurrencyUSD
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil || profile.Currency == "" {
		return models.CurrencyUSD
	}
	return profile.Currency
}

// isRecurringBank checks whether the user has another transaction at the
// same merchant for a similar amount in the lookback window.
func (s *indexingService) isRecurringBank(txn *models.BankTransaction) (bool, error) {
	if txn.Merchant == "" || txn.Merchant == models.UnknownMerchant {
		return false, nil
	}

	tolerance := txn.Amount.Abs().Mul(recurringTolerance)
	since := txn.TransactionDate.AddDate(0, 0, -recurringLookbackDays)

	count, err := s.txnRepo.CountSimilar(txn.UserID, txn.Merchant, txn.Amount, tolerance, since, txn.ID)
	if err != nil {
		return false, err
	}
	return count >= recurringMinMatches, nil
}

// isRecurringStore applies the same recurrence check to receipts, keyed by
// store name.
func (s *indexingService) isRecurringStore(txn *models.StoreTransaction) (bool, error) {
	if txn.StoreName == "" || txn.StoreName == models.UnknownMerchant {
		return false, nil
	}

	tolerance := txn.Amount.Abs().Mul(recurringTolerance)
	since := txn.TransactionDate.AddDate(0, 0, -recurringLookbackDays)

	count, err := s.storeRepo.CountSimilar(txn.UserID, txn.StoreName, txn.Amount, tolerance, since, txn.ID)
	if err != nil {
		return false, err
	}
	return count >= recurringMinMatches, nil
}

// embeddingComponents renders the header lines shared by every document
func embeddingComponents(txn models.Transaction, currency string) []string {
	at := txn.Date()
	return []string{
		fmt.Sprintf("Transaction Type: %s", strings.ToUpper(txn.Type())),
		fmt.Sprintf("Date/Time: %s", at.Format(embeddingDateLayout)),
		fmt.Sprintf("Time Context: %s | %s", timeOfDay(at), dayType(at)),
		fmt.Sprintf("Merchant: %s", txn.MerchantName()),
		fmt.Sprintf("Amount: %s %s", currency, txn.Value().Abs().StringFixed(2)),
	}
}

// embeddingMetadata builds the filterable fields shared by every document.
// The amount keeps the provider sign convention as a plain float so range
// filters work.
func embeddingMetadata(txn models.Transaction, currency string, recurring bool) map[string]interface{} {
	amount, _ := txn.Value().Float64()
	return map[string]interface{}{
		"user_id":        txn.Owner().String(),
		"transaction_id": txn.TransactionID().String(),
		"source":         txn.Source(),
		"date":           txn.Date().Format("2006-01-02"),
		"amount":         amount,
		"type":           txn.Type(),
		"merchant":       txn.MerchantName(),
		"is_recurring":   recurring,
		"is_weekend":     isWeekend(txn.Date()),
		"currency":       currency,
	}
}

func timeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

func dayType(t time.Time) string {
	if isWeekend(t) {
		return "Weekend"
	}
	return "Weekday"
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
