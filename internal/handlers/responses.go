package handlers

import (
	"net/http"

	"centsible/internal/errors"

	"github.com/labstack/echo/v4"
)

// Handlers reply to failures through SendError and SendSystemError only.
// SendError carries a known error code (validation, auth, not-found,
// business rules); SendSystemError is for anything unexpected and hides
// the internal message behind a generic envelope. echo.NewHTTPError and
// raw c.JSON error bodies bypass the trace ID and the code table, so
// neither appears in this package outside these two helpers.

// TraceIDContextKey is the context key the trace ID lives under
const TraceIDContextKey = "trace_id"

// SuccessResponse is the standard success envelope
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse aliases the shared error envelope for test assertions
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError replies with the envelope and HTTP status for a known code
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	response := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(response.GetHTTPStatus(), response)
}

// SendSystemError replies 500 with a generic envelope; the real error
// stays server-side
func SendSystemError(c echo.Context, err error) error {
	response, _ := errors.WrapSystemError(err, getTraceID(c))
	return c.JSON(http.StatusInternalServerError, response)
}
