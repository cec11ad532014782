package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"centsible/internal/config"
	"centsible/internal/dto"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/plaid"
	"centsible/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrAccountMissingToken = errors.New("no access token available for this account")
	ErrBackfillNotReady    = errors.New("aggregator has not finished preparing the initial backfill")
)

// TransactionSyncResult reports what a sync run changed across all of the
// user's accounts. Counts accumulate even when the run ends in an error, so
// callers can see how far a partial sync got.
type TransactionSyncResult struct {
	AccountsSynced int
	Added          int
	Modified       int
	Removed        int
}

// TransactionSyncServiceInterface pulls transaction deltas from the
// aggregator through per-account cursors.
type TransactionSyncServiceInterface interface {
	SyncTransactions(ctx context.Context, userID uuid.UUID) (*TransactionSyncResult, error)
}

// transactionSyncService implements TransactionSyncServiceInterface. Each
// page is persisted before its cursor, so an aborted run resumes from the
// last durable position without losing or duplicating records. A per-user
// mutex keeps two runs for the same user from interleaving pages.
type transactionSyncService struct {
	aggregator  plaid.Aggregator
	profileRepo repositories.ProfileRepositoryInterface
	accountRepo repositories.BankAccountRepositoryInterface
	txnRepo     repositories.BankTransactionRepositoryInterface
	resolver    CategoryResolverInterface
	dispatcher  *events.Dispatcher
	breaker     *CircuitBreaker
	syncConfig  config.SyncConfig
	logger      *slog.Logger
	metrics     *PrometheusMetrics

	mu    sync.Mutex
	inUse map[uuid.UUID]bool
}

// NewTransactionSyncService creates a transaction sync service
func NewTransactionSyncService(
	aggregator plaid.Aggregator,
	profileRepo repositories.ProfileRepositoryInterface,
	accountRepo repositories.BankAccountRepositoryInterface,
	txnRepo repositories.BankTransactionRepositoryInterface,
	resolver CategoryResolverInterface,
	dispatcher *events.Dispatcher,
	breaker *CircuitBreaker,
	syncConfig config.SyncConfig,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) TransactionSyncServiceInterface {
	return &transactionSyncService{
		aggregator:  aggregator,
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		resolver:    resolver,
		dispatcher:  dispatcher,
		breaker:     breaker,
		syncConfig:  syncConfig,
		logger:      logger,
		metrics:     metrics,
		inUse:       make(map[uuid.UUID]bool),
	}
}

// SyncTransactions walks every linked account of the user and drains its
// transaction delta stream. Accounts are synced sequentially; a failure on
// one account aborts the run but keeps the progress already persisted.
func (s *transactionSyncService) SyncTransactions(ctx context.Context, userID uuid.UUID) (*TransactionSyncResult, error) {
	if !s.acquire(userID) {
		return nil, ErrSyncAlreadyRunning
	}
	defer s.release(userID)

	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.IsLinked() {
		return nil, ErrProfileNotLinked
	}

	accounts, err := s.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked accounts: %w", err)
	}

	// The delta stream is token-scoped, so a page can carry records for any
	// of the user's linked accounts. Each record resolves its own owner
	// through this index.
	byExternalID := make(map[string]*models.BankAccount, len(accounts))
	for i := range accounts {
		byExternalID[accounts[i].ExternalID] = &accounts[i]
	}

	started := time.Now()
	result := &TransactionSyncResult{}

	for i := range accounts {
		account := &accounts[i]

		token := account.Token()
		if token == "" {
			token = *profile.AccessToken
		}

		if err := s.syncAccount(ctx, account, byExternalID, token, result); err != nil {
			s.logger.Error("transaction sync aborted",
				"user_id", userID,
				"account_id", account.ID,
				"error", err,
			)
			return result, err
		}
		result.AccountsSynced++
	}

	if s.metrics != nil {
		s.metrics.RecordSyncDuration(time.Since(started))
	}
	s.logger.Info("transaction sync completed",
		"user_id", userID,
		"accounts", result.AccountsSynced,
		"added", result.Added,
		"modified", result.Modified,
		"removed", result.Removed,
	)

	return result, nil
}

// syncAccount drains one account's delta stream page by page. The cursor is
// only advanced after the page's changes are durable, and an empty cursor
// from the provider means the initial backfill is still being prepared, so
// the page is retried after a pause instead of being treated as progress.
func (s *transactionSyncService) syncAccount(ctx context.Context, account *models.BankAccount, accounts map[string]*models.BankAccount, token string, result *TransactionSyncResult) error {
	if token == "" {
		return ErrAccountMissingToken
	}

	cursor := account.NextCursor
	polls := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.breaker != nil && s.breaker.IsOpen() {
			return ErrCircuitBreakerOpen
		}

		page, err := s.fetchPage(ctx, token, cursor)
		if err != nil {
			if s.breaker != nil {
				s.breaker.RecordFailure()
			}
			if s.metrics != nil {
				s.metrics.RecordSyncPage("error")
				s.metrics.RecordAggregatorError("transactions_sync")
			}
			return fmt.Errorf("failed to fetch sync page: %w", err)
		}
		if s.breaker != nil {
			s.breaker.RecordSuccess()
		}

		if page.NextCursor == "" {
			polls++
			if polls > s.syncConfig.MaxPolls {
				return ErrBackfillNotReady
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.syncConfig.PollInterval):
			}
			continue
		}
		polls = 0

		added, modified, removed, err := s.applyPage(account, accounts, page)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordSyncPage("error")
			}
			return err
		}

		if err := s.accountRepo.UpdateCursor(account.ID, page.NextCursor); err != nil {
			return fmt.Errorf("failed to persist cursor: %w", err)
		}
		cursor = page.NextCursor

		s.publishPage(ctx, account.UserID, added, modified, removed)

		result.Added += len(added)
		result.Modified += len(modified)
		result.Removed += len(removed)

		if s.metrics != nil {
			s.metrics.RecordSyncPage("success")
			s.metrics.RecordIngestion(models.TransactionSourceBank, "created", len(added))
			s.metrics.RecordIngestion(models.TransactionSourceBank, "updated", len(modified))
			s.metrics.RecordIngestion(models.TransactionSourceBank, "deleted", len(removed))
		}

		if !page.HasMore {
			return nil
		}
	}
}

// fetchPage calls the aggregator with a bounded per-page deadline
func (s *transactionSyncService) fetchPage(ctx context.Context, token, cursor string) (*dto.SyncPage, error) {
	pageCtx := ctx
	if s.syncConfig.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, s.syncConfig.PageTimeout)
		defer cancel()
	}
	return s.aggregator.SyncTransactions(pageCtx, token, cursor)
}

// applyPage persists one page of deltas. Added records land in a single
// batch; modified records update in place, falling back to insert when the
// original was never seen; removed records are deleted by provider ID.
func (s *transactionSyncService) applyPage(account *models.BankAccount, accounts map[string]*models.BankAccount, page *dto.SyncPage) (added, modified, removed []*models.BankTransaction, err error) {
	var batch []*models.BankTransaction
	for _, record := range page.Added {
		txn, err := s.normalize(account, accounts, record)
		if err != nil {
			s.logger.Warn("skipping malformed transaction record",
				"account_id", account.ID,
				"external_id", record.TransactionID,
				"error", err,
			)
			continue
		}

		// Streams for accounts sharing one token replay each other's
		// records; anything already ingested is not an add.
		_, lookupErr := s.txnRepo.GetByExternalID(account.UserID, record.TransactionID)
		if lookupErr == nil {
			continue
		}
		if !errors.Is(lookupErr, repositories.ErrTransactionNotFound) {
			return nil, nil, nil, fmt.Errorf("failed to check existing transaction: %w", lookupErr)
		}

		batch = append(batch, txn)
	}
	if err := s.txnRepo.CreateBatch(batch); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to store added transactions: %w", err)
	}
	added = batch

	for _, record := range page.Modified {
		txn, err := s.normalize(account, accounts, record)
		if err != nil {
			s.logger.Warn("skipping malformed transaction record",
				"account_id", account.ID,
				"external_id", record.TransactionID,
				"error", err,
			)
			continue
		}

		existing, err := s.txnRepo.GetByExternalID(account.UserID, record.TransactionID)
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			// A modification for an unseen record is treated as an add
			if err := s.txnRepo.Create(txn); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to store modified transaction: %w", err)
			}
			added = append(added, txn)
			continue
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load modified transaction: %w", err)
		}

		existing.Merchant = txn.Merchant
		existing.Description = txn.Description
		existing.TransactionDate = txn.TransactionDate
		existing.Amount = txn.Amount
		if err := s.txnRepo.Update(existing); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := s.txnRepo.ReplaceSubcategories(existing, txn.Subcategories); err != nil {
			return nil, nil, nil, err
		}
		modified = append(modified, existing)
	}

	for _, record := range page.Removed {
		existing, err := s.txnRepo.GetByExternalID(account.UserID, record.TransactionID)
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			// Removal notices can arrive for records that were never ingested
			continue
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load removed transaction: %w", err)
		}

		if err := s.txnRepo.DeleteByExternalID(account.UserID, record.TransactionID); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to remove transaction: %w", err)
		}
		removed = append(removed, existing)
	}

	return added, modified, removed, nil
}

// normalize converts a provider record and attaches the resolved category
// tag. The record names its owning account; records for accounts the user
// never linked are rejected so the caller can skip them. Records whose
// provider label matches no active subcategory stay untagged rather than
// being guessed.
func (s *transactionSyncService) normalize(cursorAccount *models.BankAccount, accounts map[string]*models.BankAccount, record dto.TransactionRecord) (*models.BankTransaction, error) {
	target := cursorAccount
	if record.AccountID != "" {
		owner, ok := accounts[record.AccountID]
		if !ok {
			return nil, fmt.Errorf("record belongs to unlinked account %s", record.AccountID)
		}
		target = owner
	}

	txn, err := NormalizeBankTransaction(target.UserID, target.ID, record)
	if err != nil {
		return nil, err
	}

	sub, ok, err := s.resolver.Resolve(record.PersonalFinanceCategory)
	if err != nil {
		return nil, err
	}
	if ok {
		txn.Subcategories = []models.SubCategory{*sub}
	}

	return txn, nil
}

// publishPage emits events for a page after its database work committed
func (s *transactionSyncService) publishPage(ctx context.Context, userID uuid.UUID, added, modified, removed []*models.BankTransaction) {
	if s.dispatcher == nil {
		return
	}

	for _, txn := range added {
		s.dispatcher.Publish(ctx, events.TransactionEvent{
			Op:            events.OpCreated,
			Source:        models.TransactionSourceBank,
			UserID:        userID,
			TransactionID: txn.ID,
			Date:          txn.TransactionDate,
		})
	}
	for _, txn := range modified {
		s.dispatcher.Publish(ctx, events.TransactionEvent{
			Op:            events.OpUpdated,
			Source:        models.TransactionSourceBank,
			UserID:        userID,
			TransactionID: txn.ID,
			Date:          txn.TransactionDate,
		})
	}
	for _, txn := range removed {
		s.dispatcher.Publish(ctx, events.TransactionEvent{
			Op:            events.OpDeleted,
			Source:        models.TransactionSourceBank,
			UserID:        userID,
			TransactionID: txn.ID,
			Date:          txn.TransactionDate,
		})
	}
}

func (s *transactionSyncService) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse[userID] {
		return false
	}
	s.inUse[userID] = true
	return true
}

func (s *transactionSyncService) release(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inUse, userID)
}
