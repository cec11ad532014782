package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"centsible/internal/dto"
	"centsible/internal/errors"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateParamLayout = "2006-01-02"

// TransactionHandler handles the unified transaction endpoints
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactions returns the merged bank and receipt transaction stream
// @Summary List transactions
// @Description List transactions from all sources, newest first, with optional filters
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param type query string false "income or expense"
// @Param source query string false "bank or store"
// @Param merchant query string false "Merchant name substring"
// @Param category query string false "Subcategory name"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	response, err := h.transactionService.ListTransactions(userID, filters, getPaginationParams(c))
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction returns one transaction from either source
// @Summary Get a transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - TRANSACTION_001"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a UUID"))
	}

	response, err := h.transactionService.GetTransaction(userID, txnID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteTransaction removes a transaction from either source
// @Summary Delete a transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204 "Deleted"
// @Failure 404 {object} errors.ErrorResponse "Not found - TRANSACTION_001"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a UUID"))
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, txnID); err != nil {
		if stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateStoreItem edits one line of an itemized receipt transaction
// @Summary Update a receipt item
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param itemId path int true "Item ID"
// @Param request body dto.UpdateStoreItemRequest true "Item fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Router /transactions/{id}/items/{itemId} [patch]
func (h *TransactionHandler) UpdateStoreItem(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a UUID"))
	}

	itemID, err := getUintParam(c, "itemId")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Item ID must be numeric"))
	}

	var req dto.UpdateStoreItemRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	response, err := h.transactionService.UpdateStoreItem(c.Request().Context(), userID, txnID, itemID, req)
	if err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrTransactionNotFound):
			return SendError(c, errors.TransactionNotFound)
		case stderrors.Is(err, repositories.ErrStoreItemNotFound):
			return SendError(c, errors.TransactionInvalidItem, errors.WithDetails("Item does not belong to this transaction"))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteStoreItem removes one line of an itemized receipt transaction
// @Summary Delete a receipt item
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param itemId path int true "Item ID"
// @Success 204 "Deleted"
// @Router /transactions/{id}/items/{itemId} [delete]
func (h *TransactionHandler) DeleteStoreItem(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a UUID"))
	}

	itemID, err := getUintParam(c, "itemId")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Item ID must be numeric"))
	}

	if err := h.transactionService.DeleteStoreItem(c.Request().Context(), userID, txnID, itemID); err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrTransactionNotFound):
			return SendError(c, errors.TransactionNotFound)
		case stderrors.Is(err, repositories.ErrStoreItemNotFound):
			return SendError(c, errors.TransactionInvalidItem, errors.WithDetails("Item does not belong to this transaction"))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// parseTransactionFilters reads the filter query parameters. Dates accept
// YYYY-MM-DD; the end date is inclusive of its whole day.
func parseTransactionFilters(c echo.Context) (dto.TransactionFilters, error) {
	filters := dto.TransactionFilters{
		Type:     c.QueryParam("type"),
		Source:   c.QueryParam("source"),
		Merchant: c.QueryParam("merchant"),
		Category: c.QueryParam("category"),
	}

	if raw := c.QueryParam("startDate"); raw != "" {
		start, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return filters, stderrors.New("startDate must be formatted as YYYY-MM-DD")
		}
		filters.StartDate = &start
	}

	if raw := c.QueryParam("endDate"); raw != "" {
		end, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return filters, stderrors.New("endDate must be formatted as YYYY-MM-DD")
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		filters.EndDate = &end
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return filters, stderrors.New("endDate must not be before startDate")
	}

	return filters, nil
}
