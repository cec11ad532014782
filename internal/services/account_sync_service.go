package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"centsible/internal/models"
	"centsible/internal/plaid"
	"centsible/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrProfileNotLinked   = errors.New("no bank connection linked to this profile")
	ErrSyncAlreadyRunning = errors.New("a sync is already running")
)

// AccountSyncResult reports what an account sync run changed
type AccountSyncResult struct {
	Created int
	Updated int
}

// AccountSyncServiceInterface refreshes the local account mirror from the
// aggregator.
type AccountSyncServiceInterface interface {
	SyncAccounts(ctx context.Context, userID uuid.UUID) (*AccountSyncResult, error)
}

// accountSyncService implements AccountSyncServiceInterface. A per-user
// mutex serializes runs so two triggers for the same user cannot race on
// the create-or-update partition.
type accountSyncService struct {
	aggregator  plaid.Aggregator
	profileRepo repositories.ProfileRepositoryInterface
	accountRepo repositories.BankAccountRepositoryInterface
	logger      *slog.Logger
	metrics     *PrometheusMetrics

	mu    sync.Mutex
	inUse map[uuid.UUID]bool
}

// NewAccountSyncService creates an account sync service
func NewAccountSyncService(
	aggregator plaid.Aggregator,
	profileRepo repositories.ProfileRepositoryInterface,
	accountRepo repositories.BankAccountRepositoryInterface,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) AccountSyncServiceInterface {
	return &accountSyncService{
		aggregator:  aggregator,
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		logger:      logger,
		metrics:     metrics,
		inUse:       make(map[uuid.UUID]bool),
	}
}

// SyncAccounts fetches the user's accounts from the aggregator, updates the
// balance and name of accounts already linked and inserts the rest. Account
// balances are snapshots: the provider value overwrites the stored one
// wholesale.
func (s *accountSyncService) SyncAccounts(ctx context.Context, userID uuid.UUID) (*AccountSyncResult, error) {
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

	response, err := s.aggregator.GetAccounts(ctx, *profile.AccessToken)
	if err != nil {
		s.logger.Error("account fetch failed", "user_id", userID, "error", err)
		if s.metrics != nil {
			s.metrics.RecordAggregatorError("accounts_get")
		}
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	existing, err := s.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked accounts: %w", err)
	}

	byExternalID := make(map[string]*models.BankAccount, len(existing))
	for i := range existing {
		byExternalID[existing[i].ExternalID] = &existing[i]
	}

	var toCreate []models.BankAccount
	toUpdate := make(map[uint]repositories.BankAccountUpdate)

	for _, record := range response.Accounts {
		normalized := NormalizeBankAccount(userID, record)

		if known, ok := byExternalID[record.AccountID]; ok {
			toUpdate[known.ID] = repositories.BankAccountUpdate{
				Name:    normalized.Name,
				Balance: normalized.Balance,
			}
			continue
		}
		// New accounts carry the connection token they were discovered with
		normalized.AccessToken = profile.AccessToken
		toCreate = append(toCreate, normalized)
	}

	if err := s.accountRepo.ApplySync(toCreate, toUpdate); err != nil {
		return nil, fmt.Errorf("failed to persist account sync: %w", err)
	}

	result := &AccountSyncResult{
		Created: len(toCreate),
		Updated: len(toUpdate),
	}

	s.logger.Info("account sync completed",
		"user_id", userID,
		"created", result.Created,
		"updated", result.Updated,
	)
	if s.metrics != nil {
		s.metrics.RecordAccountSync(result.Created, result.Updated)
	}

	return result, nil
}

func (s *accountSyncService) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse[userID] {
		return false
	}
	s.inUse[userID] = true
	return true
}

func (s *accountSyncService) release(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inUse, userID)
}
