package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"centsible/internal/dto"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TransactionServiceInterface is the unified read and mutation surface over
// both transaction sources.
type TransactionServiceInterface interface {
	ListTransactions(userID uuid.UUID, filters dto.TransactionFilters, pagination dto.PaginationParams) (*dto.ListTransactionsResponse, error)
	GetTransaction(userID uuid.UUID, id uuid.UUID) (*dto.TransactionResponse, error)
	DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	UpdateStoreItem(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, itemID uint, req dto.UpdateStoreItemRequest) (*dto.TransactionResponse, error)
	DeleteStoreItem(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, itemID uint) error
}

// transactionService implements TransactionServiceInterface. Listing merges
// both sources in memory: each repository returns its own page-sized slice
// and the merged result is cut to the requested page.
type transactionService struct {
	txnRepo    repositories.BankTransactionRepositoryInterface
	storeRepo  repositories.StoreTransactionRepositoryInterface
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewTransactionService creates a transaction service
func NewTransactionService(
	txnRepo repositories.BankTransactionRepositoryInterface,
	storeRepo repositories.StoreTransactionRepositoryInterface,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
) TransactionServiceInterface {
	return &transactionService{
		txnRepo:    txnRepo,
		storeRepo:  storeRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ListTransactions returns a date-descending page across both sources.
// Receipts never carry income, so an income filter skips the store source
// entirely.
func (s *transactionService) ListTransactions(userID uuid.UUID, filters dto.TransactionFilters, pagination dto.PaginationParams) (*dto.ListTransactionsResponse, error) {
	page, limit := normalizePagination(pagination)
	window := page * limit

	includeBank := filters.Source == "" || filters.Source == models.TransactionSourceBank
	includeStore := (filters.Source == "" || filters.Source == models.TransactionSourceStore) &&
		filters.Type != models.TransactionTypeIncome

	var merged []dto.TransactionResponse
	var total int64

	if includeBank {
		txns, count, err := s.txnRepo.GetByUserID(userID, filters, 0, window)
		if err != nil {
			return nil, err
		}
		total += count
		for i := range txns {
			merged = append(merged, *toBankTransactionResponse(&txns[i]))
		}
	}

	if includeStore {
		txns, count, err := s.storeRepo.GetByUserID(userID, filters, 0, window)
		if err != nil {
			return nil, err
		}
		total += count
		for i := range txns {
			merged = append(merged, *toStoreTransactionResponse(&txns[i]))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.After(merged[j].Date)
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	offset := (page - 1) * limit
	if offset > len(merged) {
		offset = len(merged)
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}

	return &dto.ListTransactionsResponse{
		Transactions: merged[offset:end],
		Pagination: dto.PaginationInfo{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: int64(page*limit) < total,
		},
	}, nil
}

// GetTransaction returns one transaction from either source
func (s *transactionService) GetTransaction(userID uuid.UUID, id uuid.UUID) (*dto.TransactionResponse, error) {
	bank, err := s.txnRepo.GetByID(id)
	if err == nil {
		if bank.UserID != userID {
			return nil, repositories.ErrTransactionNotFound
		}
		return toBankTransactionResponse(bank), nil
	}
	if !errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, err
	}

	store, err := s.storeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store.UserID != userID {
		return nil, repositories.ErrTransactionNotFound
	}
	return toStoreTransactionResponse(store), nil
}

// DeleteTransaction removes a transaction from either source and notifies
// downstream consumers.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	bank, err := s.txnRepo.GetByID(id)
	if err == nil {
		if bank.UserID != userID {
			return repositories.ErrTransactionNotFound
		}
		if err := s.txnRepo.Delete(id); err != nil {
			return err
		}
		s.publishDeleted(ctx, models.TransactionSourceBank, userID, id, bank.TransactionDate)
		return nil
	}
	if !errors.Is(err, repositories.ErrTransactionNotFound) {
		return err
	}

	store, err := s.storeRepo.GetByID(id)
	if err != nil {
		return err
	}
	if store.UserID != userID {
		return repositories.ErrTransactionNotFound
	}
	if err := s.storeRepo.Delete(id); err != nil {
		return err
	}
	s.publishDeleted(ctx, models.TransactionSourceStore, userID, id, store.TransactionDate)
	return nil
}

// UpdateStoreItem mutates one receipt line. The parent amount is re-derived
// by the repository; consumers are notified so budgets and the index catch
// up.
func (s *transactionService) UpdateStoreItem(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, itemID uint, req dto.UpdateStoreItemRequest) (*dto.TransactionResponse, error) {
	txn, err := s.ownedStoreTransaction(userID, txnID)
	if err != nil {
		return nil, err
	}

	var item *models.StoreItem
	for i := range txn.Items {
		if txn.Items[i].ID == itemID {
			item = &txn.Items[i]
			break
		}
	}
	if item == nil {
		return nil, repositories.ErrStoreItemNotFound
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		price, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price: %w", err)
		}
		item.UnitPrice = price
	}

	if err := s.storeRepo.UpdateItem(txnID, item); err != nil {
		return nil, err
	}

	updated, err := s.storeRepo.GetByID(txnID)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, userID, txnID, updated.TransactionDate)
	return toStoreTransactionResponse(updated), nil
}

// DeleteStoreItem removes one receipt line
func (s *transactionService) DeleteStoreItem(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, itemID uint) error {
	txn, err := s.ownedStoreTransaction(userID, txnID)
	if err != nil {
		return err
	}

	if err := s.storeRepo.DeleteItem(txnID, itemID); err != nil {
		return err
	}

	s.publishUpdated(ctx, userID, txnID, txn.TransactionDate)
	return nil
}

func (s *transactionService) ownedStoreTransaction(userID uuid.UUID, txnID uuid.UUID) (*models.StoreTransaction, error) {
	txn, err := s.storeRepo.GetByID(txnID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, repositories.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *transactionService) publishUpdated(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, date time.Time) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.TransactionEvent{
		Op:            events.OpUpdated,
		Source:        models.TransactionSourceStore,
		UserID:        userID,
		TransactionID: txnID,
		Date:          date,
	})
}

func (s *transactionService) publishDeleted(ctx context.Context, source string, userID uuid.UUID, txnID uuid.UUID, date time.Time) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.TransactionEvent{
		Op:            events.OpDeleted,
		Source:        source,
		UserID:        userID,
		TransactionID: txnID,
		Date:          date,
	})
}

func normalizePagination(p dto.PaginationParams) (page, limit int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func toBankTransactionResponse(txn *models.BankTransaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:            txn.ID,
		Source:        models.TransactionSourceBank,
		Type:          txn.Type(),
		Merchant:      txn.MerchantName(),
		Description:   txn.Description,
		Amount:        txn.Amount.Abs().StringFixed(2),
		Date:          txn.TransactionDate,
		Subcategories: txn.CategoryNames(),
		CreatedAt:     txn.CreatedAt,
	}
}

func toStoreTransactionResponse(txn *models.StoreTransaction) *dto.TransactionResponse {
	items := make([]dto.StoreItemResponse, 0, len(txn.Items))
	for i := range txn.Items {
		item := &txn.Items[i]
		names := make([]string, 0, len(item.Subcategories))
		for _, sc := range item.Subcategories {
			names = append(names, sc.Name)
		}
		items = append(items, dto.StoreItemResponse{
			ID:            item.ID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice.StringFixed(2),
			TotalAmount:   item.TotalAmount.StringFixed(2),
			Subcategories: names,
		})
	}

	return &dto.TransactionResponse{
		ID:            txn.ID,
		Source:        models.TransactionSourceStore,
		Type:          txn.Type(),
		Merchant:      txn.MerchantName(),
		Description:   txn.Description,
		Amount:        txn.Amount.StringFixed(2),
		Date:          txn.TransactionDate,
		Subcategories: txn.CategoryNames(),
		Items:         items,
		CreatedAt:     txn.CreatedAt,
	}
}
