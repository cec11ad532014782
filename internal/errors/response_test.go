package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(BudgetNotFound, "trace-123")

	assert.Equal(t, "BUDGET_001", resp.Error.Code)
	assert.Equal(t, "Budget not found", resp.Error.Message)
	assert.Equal(t, "trace-123", resp.Error.TraceID)
	assert.Empty(t, resp.Error.Details)
}

func TestNewErrorResponse_WithOptions(t *testing.T) {
	resp := NewErrorResponse(ValidationGeneral, "trace-456",
		WithMessage("Budget payload is invalid"),
		WithDetails("planned_amount: must be greater than zero"),
	)

	assert.Equal(t, "Budget payload is invalid", resp.Error.Message)
	assert.Equal(t, []string{"planned_amount: must be greater than zero"}, resp.Error.Details)
}

func TestNewValidationError(t *testing.T) {
	resp := NewValidationError(map[string]string{
		"month": "expected YYYY-MM",
	}, "trace-789")

	assert.Equal(t, string(ValidationGeneral), resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "month: expected YYYY-MM", resp.Error.Details[0])
}

func TestToJSON(t *testing.T) {
	resp := NewErrorResponse(AccountNotFound, "trace-abc")

	data, err := resp.ToJSON()
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ACCOUNT_001", decoded["error"]["code"])
	assert.Equal(t, "trace-abc", decoded["error"]["trace_id"])
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ValidationInvalidMonth, http.StatusBadRequest},
		{AuthExpiredToken, http.StatusUnauthorized},
		{BudgetNotFound, http.StatusNotFound},
		{BudgetDuplicate, http.StatusConflict},
		{AccountSyncInFlight, http.StatusConflict},
		{ProfileNotLinked, http.StatusUnprocessableEntity},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{AggregatorSyncFailed, http.StatusBadGateway},
		{AggregatorUnavailable, http.StatusServiceUnavailable},
		{SystemInternalError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestIsClientServerError(t *testing.T) {
	assert.True(t, NewErrorResponse(BudgetNotFound, "t").IsClientError())
	assert.False(t, NewErrorResponse(BudgetNotFound, "t").IsServerError())
	assert.True(t, NewErrorResponse(SystemDatabaseError, "t").IsServerError())
	assert.False(t, NewErrorResponse(SystemDatabaseError, "t").IsClientError())
}
