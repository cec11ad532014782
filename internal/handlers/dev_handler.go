package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"centsible/internal/errors"
	"centsible/internal/events"
	"centsible/internal/models"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DevHandler seeds synthetic transaction history. Routes are registered
// only in development environments.
type DevHandler struct {
	accountRepo repositories.BankAccountRepositoryInterface
	txnRepo     repositories.BankTransactionRepositoryInterface
	generator   services.TransactionGeneratorInterface
	dispatcher  *events.Dispatcher
}

// NewDevHandler creates a development handler
func NewDevHandler(
	accountRepo repositories.BankAccountRepositoryInterface,
	txnRepo repositories.BankTransactionRepositoryInterface,
	generator services.TransactionGeneratorInterface,
	dispatcher *events.Dispatcher,
) *DevHandler {
	return &DevHandler{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		generator:   generator,
		dispatcher:  dispatcher,
	}
}

// GenerateTestData seeds a linked account with synthetic history
// @Summary Generate sample transactions (development only)
// @Tags dev
// @Produce json
// @Param id path int true "Bank account ID"
// @Param count query int false "Number of purchases to generate (default 100, max 1000)"
// @Param days query int false "Days of history (default 30, max 365)"
// @Success 201 {object} SuccessResponse
// @Router /dev/accounts/{id}/transactions [post]
func (h *DevHandler) GenerateTestData(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID, err := getUintParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account ID"))
	}

	account, err := h.accountRepo.GetByID(accountID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrBankAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}
	if account.UserID != userID {
		return SendError(c, errors.AccountNotFound)
	}

	count := clamp(getIntParam(c, "count", 100), 1, 1000)
	days := clamp(getIntParam(c, "days", 30), 1, 365)

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	transactions, err := h.generator.GenerateHistory(userID, account.ID, startDate, endDate, count)
	if err != nil {
		return SendSystemError(c, err)
	}

	if err := h.txnRepo.CreateBatch(transactions); err != nil {
		return SendSystemError(c, err)
	}
	h.publishCreated(c, userID, transactions)

	return c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Sample transactions generated",
		Data: map[string]interface{}{
			"accountId":           account.ID,
			"transactionsCreated": len(transactions),
			"startDate":           startDate.Format(time.RFC3339),
			"endDate":             endDate.Format(time.RFC3339),
		},
	})
}

// publishCreated fans the seeded rows out to budget reconciliation and the
// document index, the same path real sync pages take.
func (h *DevHandler) publishCreated(c echo.Context, userID uuid.UUID, transactions []*models.BankTransaction) {
	if h.dispatcher == nil {
		return
	}
	ctx := c.Request().Context()
	for _, txn := range transactions {
		h.dispatcher.Publish(ctx, events.TransactionEvent{
			Op:            events.OpCreated,
			Source:        models.TransactionSourceBank,
			UserID:        userID,
			TransactionID: txn.ID,
			Date:          txn.TransactionDate,
		})
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
