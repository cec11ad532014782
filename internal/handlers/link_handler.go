package handlers

import (
	stderrors "errors"
	"net/http"

	"centsible/internal/dto"
	"centsible/internal/errors"
	"centsible/internal/plaid"
	"centsible/internal/services"

	"github.com/labstack/echo/v4"
)

// LinkHandler handles bank linking and synchronization endpoints
type LinkHandler struct {
	linkService services.LinkServiceInterface
	accountSync services.AccountSyncServiceInterface
	txnSync     services.TransactionSyncServiceInterface
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(
	linkService services.LinkServiceInterface,
	accountSync services.AccountSyncServiceInterface,
	txnSync services.TransactionSyncServiceInterface,
) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
		accountSync: accountSync,
		txnSync:     txnSync,
	}
}

// CreateLinkToken opens a link session with the aggregator
// @Summary Create a link token
// @Description Request a short-lived token for the client-side bank linking widget
// @Tags Linking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.LinkTokenResponse
// @Failure 502 {object} errors.ErrorResponse "Aggregator failure - AGGREGATOR_001"
// @Router /link/token [post]
func (h *LinkHandler) CreateLinkToken(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	response, err := h.linkService.CreateLinkToken(c.Request().Context(), userID)
	if err != nil {
		if isAggregatorError(err) {
			return SendError(c, errors.AggregatorLinkFailed)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

// ExchangePublicToken trades the widget's public token for an access token
// @Summary Exchange a public token
// @Description Store the bank connection and start the initial account and transaction sync
// @Tags Linking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ExchangeTokenRequest true "Public token from the linking widget"
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} errors.ErrorResponse "Aggregator failure - AGGREGATOR_002"
// @Router /link/exchange [post]
func (h *LinkHandler) ExchangePublicToken(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.ExchangeTokenRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if err := h.linkService.ExchangePublicToken(c.Request().Context(), userID, req.PublicToken); err != nil {
		if isAggregatorError(err) {
			return SendError(c, errors.AggregatorExchangeFailed)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Bank connection linked successfully",
	})
}

// ListAccounts returns the user's mirrored bank accounts
// @Summary List linked bank accounts
// @Tags Linking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ListBankAccountsResponse
// @Router /accounts [get]
func (h *LinkHandler) ListAccounts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	response, err := h.linkService.ListAccounts(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

// SyncTransactions runs a cursor-based transaction sync for all accounts
// @Summary Sync transactions
// @Description Pull added, modified, and removed transactions from the aggregator
// @Tags Linking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SyncResponse
// @Failure 409 {object} errors.ErrorResponse "Sync already running - ACCOUNT_003"
// @Failure 422 {object} errors.ErrorResponse "No bank connection - PROFILE_002"
// @Failure 502 {object} errors.ErrorResponse "Aggregator failure - AGGREGATOR_003"
// @Router /transactions/sync [post]
func (h *LinkHandler) SyncTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	result, err := h.txnSync.SyncTransactions(c.Request().Context(), userID)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrSyncAlreadyRunning):
			return SendError(c, errors.AccountSyncInFlight)
		case stderrors.Is(err, services.ErrProfileNotLinked):
			return SendError(c, errors.ProfileNotLinked)
		case stderrors.Is(err, services.ErrAccountMissingToken):
			return SendError(c, errors.AccountMissingToken)
		case stderrors.Is(err, services.ErrBackfillNotReady):
			return SendError(c, errors.AggregatorUnavailable, errors.WithDetails("Initial backfill is still being prepared, try again shortly"))
		case stderrors.Is(err, services.ErrCircuitBreakerOpen):
			return SendError(c, errors.AggregatorUnavailable)
		case isAggregatorError(err):
			return SendError(c, errors.AggregatorSyncFailed)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.SyncResponse{
		AccountsSynced: result.AccountsSynced,
		Added:          result.Added,
		Modified:       result.Modified,
		Removed:        result.Removed,
	})
}

// SyncAccounts refreshes the mirrored account list and balances
// @Summary Sync bank accounts
// @Tags Linking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ListBankAccountsResponse
// @Router /accounts/sync [post]
func (h *LinkHandler) SyncAccounts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if _, err := h.accountSync.SyncAccounts(c.Request().Context(), userID); err != nil {
		switch {
		case stderrors.Is(err, services.ErrSyncAlreadyRunning):
			return SendError(c, errors.AccountSyncInFlight)
		case stderrors.Is(err, services.ErrProfileNotLinked):
			return SendError(c, errors.ProfileNotLinked)
		case isAggregatorError(err):
			return SendError(c, errors.AggregatorSyncFailed)
		default:
			return SendSystemError(c, err)
		}
	}

	response, err := h.linkService.ListAccounts(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

func isAggregatorError(err error) bool {
	var apiErr *plaid.APIError
	return stderrors.As(err, &apiErr)
}
