package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"centsible/internal/dto"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/ocr"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// receiptDateLayouts are the timestamp shapes the extraction model emits,
// tried in order.
var receiptDateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

var (
	ErrReceiptNoItems    = errors.New("receipt contains no items")
	ErrReceiptExtraction = errors.New("receipt extraction failed")
)

// ReceiptServiceInterface turns receipt images into store transactions
type ReceiptServiceInterface interface {
	IngestReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error)
}

// receiptService implements ReceiptServiceInterface. Extraction output is
// treated as untrusted: every numeric field is parsed defensively and a
// payload that cannot produce at least one valid item is rejected rather
// than stored half-empty.
type receiptService struct {
	extractor  ocr.ReceiptExtractor
	storeRepo  repositories.StoreTransactionRepositoryInterface
	resolver   CategoryResolverInterface
	dispatcher *events.Dispatcher
	logger     *slog.Logger
	metrics    *PrometheusMetrics
}

// NewReceiptService creates a receipt service
func NewReceiptService(
	extractor ocr.ReceiptExtractor,
	storeRepo repositories.StoreTransactionRepositoryInterface,
	resolver CategoryResolverInterface,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) ReceiptServiceInterface {
	return &receiptService{
		extractor:  extractor,
		storeRepo:  storeRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// IngestReceipt extracts a receipt image and stores it as an itemized store
// transaction. Item categories come back from the model as exact subcategory
// names; labels that match nothing active leave the item untagged.
func (s *receiptService) IngestReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error) {
	started := time.Now()

	names, err := s.resolver.ActiveNames()
	if err != nil {
		return nil, fmt.Errorf("failed to load category names: %w", err)
	}

	payload, err := s.extractor.Extract(ctx, image, mimeType, names)
	if err != nil {
		s.recordReceipt("extraction_failed", started)
		return nil, fmt.Errorf("%w: %v", ErrReceiptExtraction, err)
	}

	txn, err := s.buildTransaction(userID, payload)
	if err != nil {
		s.recordReceipt("rejected", started)
		return nil, err
	}

	if err := s.storeRepo.CreateWithItems(txn); err != nil {
		s.recordReceipt("store_failed", started)
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	if s.dispatcher != nil {
		s.dispatcher.Publish(ctx, events.TransactionEvent{
			Op:            events.OpCreated,
			Source:        models.TransactionSourceStore,
			UserID:        userID,
			TransactionID: txn.ID,
			Date:          txn.TransactionDate,
		})
	}

	s.recordReceipt("success", started)
	s.logger.Info("receipt ingested",
		"user_id", userID,
		"transaction_id", txn.ID,
		"store", txn.StoreName,
		"items", len(txn.Items),
	)

	return &dto.ReceiptUploadResponse{
		TransactionID: txn.ID.String(),
		StoreName:     txn.StoreName,
		Date:          txn.TransactionDate.Format("2006-01-02"),
		Amount:        txn.Amount.StringFixed(2),
		ItemCount:     len(txn.Items),
	}, nil
}

// buildTransaction converts the extraction payload into a store transaction
// with tagged items. Lines that cannot be parsed are dropped with a warning;
// a payload with no usable lines is rejected.
func (s *receiptService) buildTransaction(userID uuid.UUID, payload *dto.ReceiptPayload) (*models.StoreTransaction, error) {
	date := parseReceiptDate(payload.DateTime)

	txn := &models.StoreTransaction{
		UserID:          userID,
		StoreName:       strings.TrimSpace(payload.StoreName),
		TransactionDate: date,
	}

	for _, line := range payload.Items {
		item, err := s.buildItem(line)
		if err != nil {
			s.logger.Warn("dropping unparseable receipt line",
				"name", line.Name,
				"error", err,
			)
			continue
		}
		txn.Items = append(txn.Items, *item)
	}

	if len(txn.Items) == 0 {
		return nil, ErrReceiptNoItems
	}

	return txn, nil
}

func (s *receiptService) buildItem(line dto.ReceiptItem) (*models.StoreItem, error) {
	name := strings.TrimSpace(line.Name)
	if name == "" {
		return nil, errors.New("item has no name")
	}

	quantity, err := parseReceiptQuantity(line.Quantity)
	if err != nil {
		return nil, err
	}

	unitPrice, err := parseReceiptAmount(line.UnitPrice)
	if err != nil {
		// Fall back to deriving the unit price from the line total
		total, totalErr := parseReceiptAmount(line.TotalPrice)
		if totalErr != nil {
			return nil, err
		}
		unitPrice = total.Div(decimal.NewFromInt(int64(quantity)))
	}

	item := &models.StoreItem{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}

	if line.Category != "" {
		sub, ok, err := s.resolver.ResolveName(strings.TrimSpace(line.Category))
		if err != nil {
			return nil, err
		}
		if ok {
			item.Subcategories = []models.SubCategory{*sub}
		}
	}

	return item, nil
}

func (s *receiptService) recordReceipt(status string, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordReceipt(status, time.Since(started))
	}
}

// parseReceiptDate parses the extracted timestamp, falling back to the
// current time when the model produced nothing usable. A receipt with an
// unreadable date is still worth keeping.
func parseReceiptDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range receiptDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}

// parseReceiptQuantity parses an extracted quantity, accepting whole-number
// decimals like "2.0". Missing quantities default to one.
func parseReceiptQuantity(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1, nil
	}

	if quantity, err := strconv.Atoi(value); err == nil {
		if quantity <= 0 {
			return 0, models.ErrInvalidQuantity
		}
		return quantity, nil
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", value)
	}
	if !parsed.Equal(parsed.Truncate(0)) || parsed.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("invalid quantity %q", value)
	}
	return int(parsed.IntPart()), nil
}

// parseReceiptAmount parses an extracted money string, stripping currency
// symbols and thousands separators.
func parseReceiptAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(value))

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("no numeric content in %q", value)
	}

	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return parsed, nil
}
