package services

import (
	"context"
	"fmt"
	"log/slog"

	"centsible/internal/dto"
	"centsible/internal/plaid"
	"centsible/internal/repositories"

	"github.com/google/uuid"
)

// LinkServiceInterface drives the aggregator linking flow
type LinkServiceInterface interface {
	CreateLinkToken(ctx context.Context, userID uuid.UUID) (*dto.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, userID uuid.UUID, publicToken string) error
	ListAccounts(userID uuid.UUID) (*dto.ListBankAccountsResponse, error)
}

// linkService implements LinkServiceInterface. Exchanging a public token
// stores the access token, mirrors the accounts immediately and kicks the
// initial transaction backfill off in the background: the backfill can take
// the provider a while to prepare and must not block the linking response.
type linkService struct {
	aggregator  plaid.Aggregator
	profileRepo repositories.ProfileRepositoryInterface
	accountRepo repositories.BankAccountRepositoryInterface
	accountSync AccountSyncServiceInterface
	txnSync     TransactionSyncServiceInterface
	logger      *slog.Logger
}

// NewLinkService creates a link service
func NewLinkService(
	aggregator plaid.Aggregator,
	profileRepo repositories.ProfileRepositoryInterface,
	accountRepo repositories.BankAccountRepositoryInterface,
	accountSync AccountSyncServiceInterface,
	txnSync TransactionSyncServiceInterface,
	logger *slog.Logger,
) LinkServiceInterface {
	return &linkService{
		aggregator:  aggregator,
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		accountSync: accountSync,
		txnSync:     txnSync,
		logger:      logger,
	}
}

// CreateLinkToken requests a short-lived link token for the client-side
// linking widget.
func (s *linkService) CreateLinkToken(ctx context.Context, userID uuid.UUID) (*dto.LinkTokenResponse, error) {
	response, err := s.aggregator.CreateLinkToken(ctx, userID.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create link token: %w", err)
	}
	return response, nil
}

// ExchangePublicToken trades the widget's public token for a durable access
// token and starts syncing.
func (s *linkService) ExchangePublicToken(ctx context.Context, userID uuid.UUID, publicToken string) error {
	response, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return fmt.Errorf("failed to exchange public token: %w", err)
	}

	if err := s.profileRepo.SetAccessToken(userID, response.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	if _, err := s.accountSync.SyncAccounts(ctx, userID); err != nil {
		s.logger.Error("initial account sync failed", "user_id", userID, "error", err)
	}

	// The backfill outlives the linking request
	go func() {
		if _, err := s.txnSync.SyncTransactions(context.Background(), userID); err != nil {
			s.logger.Error("initial transaction sync failed", "user_id", userID, "error", err)
		}
	}()

	s.logger.Info("bank connection linked", "user_id", userID)
	return nil
}

// ListAccounts returns the user's mirrored bank accounts
func (s *linkService) ListAccounts(userID uuid.UUID) (*dto.ListBankAccountsResponse, error) {
	accounts, err := s.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	response := &dto.ListBankAccountsResponse{
		Accounts: make([]dto.BankAccountResponse, 0, len(accounts)),
		Total:    len(accounts),
	}
	for i := range accounts {
		account := &accounts[i]
		response.Accounts = append(response.Accounts, dto.BankAccountResponse{
			ID:         account.ID,
			ExternalID: account.ExternalID,
			Name:       account.Name,
			Balance:    account.Balance.StringFixed(2),
			Linked:     !account.NeedsBackfill(),
			CreatedAt:  account.CreatedAt,
			UpdatedAt:  account.UpdatedAt,
		})
	}
	return response, nil
}
