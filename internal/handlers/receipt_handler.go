package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"centsible/internal/errors"
	"centsible/internal/services"

	"github.com/labstack/echo/v4"
)

// maxReceiptBytes caps uploaded receipt images at 10 MiB
const maxReceiptBytes = 10 << 20

// ReceiptHandler handles receipt upload endpoints
type ReceiptHandler struct {
	receiptService services.ReceiptServiceInterface
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService services.ReceiptServiceInterface) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// UploadReceipt extracts a receipt image into an itemized transaction
// @Summary Upload a receipt
// @Description Run OCR extraction on a receipt image and store it as an itemized transaction
// @Tags Receipts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param receipt formData file true "Receipt image (JPEG, PNG, or WebP)"
// @Success 201 {object} dto.ReceiptUploadResponse
// @Failure 400 {object} errors.ErrorResponse "Missing or oversized file - RECEIPT_001"
// @Failure 422 {object} errors.ErrorResponse "No usable items - RECEIPT_003"
// @Failure 502 {object} errors.ErrorResponse "Extraction failed - RECEIPT_002"
// @Router /receipts [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return SendError(c, errors.ReceiptMissingFile)
	}

	if fileHeader.Size > maxReceiptBytes {
		return SendError(c, errors.ReceiptMissingFile, errors.WithDetails("Receipt image exceeds the 10 MiB limit"))
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !isSupportedImageType(mimeType) {
		return SendError(c, errors.ReceiptMissingFile, errors.WithDetails("Receipt must be a JPEG, PNG, or WebP image"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return SendSystemError(c, err)
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes))
	if err != nil {
		return SendSystemError(c, err)
	}

	response, err := h.receiptService.IngestReceipt(c.Request().Context(), userID, image, mimeType)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrReceiptNoItems):
			return SendError(c, errors.ReceiptUnreadablePayload)
		case stderrors.Is(err, services.ErrReceiptExtraction):
			return SendError(c, errors.ReceiptExtractionFailed)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, response)
}

func isSupportedImageType(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
