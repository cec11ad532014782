package dto

// Receipt extraction DTOs. The OCR model returns every numeric field as a
// string, possibly with currency symbols or thousands separators; parsing to
// decimals happens in the receipt service.

// ReceiptPayload is the structured output of receipt extraction
type ReceiptPayload struct {
	StoreName   string        `json:"store_name"`
	DateTime    string        `json:"date_time"`
	TotalAmount string        `json:"total_amount"`
	Items       []ReceiptItem `json:"items"`
}

// ReceiptItem is one extracted line of a receipt
type ReceiptItem struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
	Category   string `json:"category"`
}

// ReceiptUploadResponse reports the outcome of a receipt ingestion
type ReceiptUploadResponse struct {
	TransactionID string `json:"transactionId"`
	StoreName     string `json:"storeName"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	ItemCount     int    `json:"itemCount"`
}
