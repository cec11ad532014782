package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthMissingToken       ErrorCode = "AUTH_002"
	AuthExpiredToken       ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat ErrorCode = "AUTH_004"
	AuthEmailTaken         ErrorCode = "AUTH_005"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidMonth  ErrorCode = "VALIDATION_006"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
)

// Profile error codes (PROFILE_*)
const (
	ProfileNotFound        ErrorCode = "PROFILE_001"
	ProfileNotLinked       ErrorCode = "PROFILE_002"
	ProfileInvalidCurrency ErrorCode = "PROFILE_003"
)

// Bank account error codes (ACCOUNT_*)
const (
	AccountNotFound      ErrorCode = "ACCOUNT_001"
	AccountMissingToken  ErrorCode = "ACCOUNT_002"
	AccountSyncInFlight  ErrorCode = "ACCOUNT_003"
	AccountDuplicate     ErrorCode = "ACCOUNT_004"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound      ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount ErrorCode = "TRANSACTION_002"
	TransactionMissingDate   ErrorCode = "TRANSACTION_003"
	TransactionInvalidItem   ErrorCode = "TRANSACTION_004"
)

// Budget error codes (BUDGET_*)
const (
	BudgetNotFound        ErrorCode = "BUDGET_001"
	BudgetDuplicate       ErrorCode = "BUDGET_002"
	BudgetInvalidAmount   ErrorCode = "BUDGET_003"
	BudgetNothingToCopy   ErrorCode = "BUDGET_004"
	BudgetInvalidCategory ErrorCode = "BUDGET_005"
)

// Receipt error codes (RECEIPT_*)
const (
	ReceiptMissingFile       ErrorCode = "RECEIPT_001"
	ReceiptExtractionFailed  ErrorCode = "RECEIPT_002"
	ReceiptUnreadablePayload ErrorCode = "RECEIPT_003"
)

// Aggregator error codes (AGGREGATOR_*)
const (
	AggregatorLinkFailed     ErrorCode = "AGGREGATOR_001"
	AggregatorExchangeFailed ErrorCode = "AGGREGATOR_002"
	AggregatorSyncFailed     ErrorCode = "AGGREGATOR_003"
	AggregatorUnavailable    ErrorCode = "AGGREGATOR_004"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound    ErrorCode = "CATEGORY_001"
	SubCategoryNotFound ErrorCode = "CATEGORY_002"
)

// Goal error codes (GOAL_*)
const (
	GoalNotFound      ErrorCode = "GOAL_001"
	GoalInvalidAmount ErrorCode = "GOAL_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials: "Invalid email or password",
	AuthMissingToken:       "Authorization token is required",
	AuthExpiredToken:       "Authorization token has expired",
	AuthInvalidTokenFormat: "Invalid authorization token format",
	AuthEmailTaken:         "An account with this email already exists",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email address format",
	ValidationInvalidMonth:  "Invalid month format, expected YYYY-MM",
	ValidationInvalidDate:   "Invalid date format or range",

	// Profile errors
	ProfileNotFound:        "Profile not found",
	ProfileNotLinked:       "No bank connection is linked to this profile",
	ProfileInvalidCurrency: "Unsupported currency code",

	// Bank account errors
	AccountNotFound:     "Bank account not found",
	AccountMissingToken: "Bank account has no usable access token",
	AccountSyncInFlight: "A sync for this account is already running",
	AccountDuplicate:    "Bank account already linked for this user",

	// Transaction errors
	TransactionNotFound:      "Transaction not found",
	TransactionInvalidAmount: "Invalid transaction amount",
	TransactionMissingDate:   "Transaction date is required",
	TransactionInvalidItem:   "Receipt item is invalid",

	// Budget errors
	BudgetNotFound:        "Budget not found",
	BudgetDuplicate:       "A budget for this category and month already exists",
	BudgetInvalidAmount:   "Planned amount must be greater than zero",
	BudgetNothingToCopy:   "No budgets found in the previous month to copy",
	BudgetInvalidCategory: "Budget category does not exist",

	// Receipt errors
	ReceiptMissingFile:       "Receipt image file is required",
	ReceiptExtractionFailed:  "Receipt extraction failed",
	ReceiptUnreadablePayload: "Receipt extraction returned an unreadable payload",

	// Aggregator errors
	AggregatorLinkFailed:     "Failed to create a link session with the bank aggregator",
	AggregatorExchangeFailed: "Failed to exchange the public token",
	AggregatorSyncFailed:     "Bank data synchronization failed",
	AggregatorUnavailable:    "Bank aggregator is temporarily unavailable",

	// Category errors
	CategoryNotFound:    "Category not found",
	SubCategoryNotFound: "Subcategory not found",

	// Goal errors
	GoalNotFound:      "Savings goal not found",
	GoalInvalidAmount: "Invalid goal amount",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
