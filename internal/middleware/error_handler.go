package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"centsible/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, endpoint, and status",
	},
	[]string{"code", "endpoint", "status"},
)

// CustomHTTPErrorHandler is the echo-level catch-all. Anything a handler
// returns instead of writing itself lands here: echo routing errors,
// validator failures, and unclassified errors, all converted to the shared
// envelope, logged, and counted.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	var response *errors.ErrorResponse
	var status int

	switch e := err.(type) {
	case *echo.HTTPError:
		response = errors.NewErrorResponse(
			mapHTTPStatusToErrorCode(e.Code),
			traceID,
			errors.WithMessage(fmt.Sprintf("%v", e.Message)),
		)
		status = e.Code
	case validator.ValidationErrors:
		fieldErrors := make(map[string]string, len(e))
		for _, fieldErr := range e {
			fieldErrors[fieldErr.Field()] = formatValidationError(fieldErr)
		}
		response = errors.NewValidationError(fieldErrors, traceID)
		status = http.StatusBadRequest
	default:
		response, _ = errors.WrapSystemError(err, traceID)
		status = response.GetHTTPStatus()
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	slog.Log(c.Request().Context(), level, "request failed",
		"trace_id", traceID,
		"error_code", response.Error.Code,
		"status", status,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", err.Error(),
	)

	apiErrorsTotal.WithLabelValues(response.Error.Code, c.Path(), fmt.Sprintf("%d", status)).Inc()

	if sendErr := c.JSON(status, response); sendErr != nil {
		slog.Error("failed to write error response", "trace_id", traceID, "error", sendErr)
	}
}

// mapHTTPStatusToErrorCode picks the closest code for errors echo raised
// itself. The code table has no dedicated entries for unknown routes or
// forbidden access, so those reuse the nearest validation and auth codes.
func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return errors.AuthMissingToken
	case http.StatusForbidden:
		return errors.AuthInvalidTokenFormat
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusInternalServerError:
		return errors.SystemInternalError
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	case http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return errors.ValidationGeneral
	default:
		return errors.SystemUnexpectedError
	}
}

// formatValidationError renders one field failure as client-facing text
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return sizeMessage("at least", fe)
	case "max":
		return sizeMessage("at most", fe)
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "currency_code":
		return "must be a supported currency code"
	case "decimal_amount":
		return "must be a valid non-negative decimal amount"
	case "budget_month":
		return "must be a month in YYYY-MM format"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

func sizeMessage(bound string, fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return fmt.Sprintf("must be %s %s characters long", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}
