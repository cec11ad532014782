package handlers

import (
	"regexp"

	"centsible/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var budgetMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// CustomValidator wraps the validator for echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new custom validator with the domain tags
// registered.
func NewValidator() echo.Validator {
	return &CustomValidator{validator: newValidate()}
}

func newValidate() *validator.Validate {
	v := validator.New()

	// currency_code: one of the supported preferred currencies
	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return models.IsValidCurrency(fl.Field().String())
	})

	// decimal_amount: a parseable, non-negative decimal string
	_ = v.RegisterValidation("decimal_amount", func(fl validator.FieldLevel) bool {
		amount, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !amount.IsNegative()
	})

	// budget_month: YYYY-MM
	_ = v.RegisterValidation("budget_month", func(fl validator.FieldLevel) bool {
		return budgetMonthRegex.MatchString(fl.Field().String())
	})

	return v
}

// Validate implements the echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
