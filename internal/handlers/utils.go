package handlers

import (
	"fmt"

	"centsible/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// Helper function to extract user ID from context
// Returns ErrUnauthorized if user ID is missing or invalid
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userIDValue := c.Get("user_id")
	if userIDValue == nil {
		return uuid.UUID{}, ErrUnauthorized
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.UUID{}, ErrUnauthorized
	}

	return userID, nil
}

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(param, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}

// getPaginationParams reads page and limit query parameters with defaults
func getPaginationParams(c echo.Context) dto.PaginationParams {
	return dto.PaginationParams{
		Page:  getIntParam(c, "page", 1),
		Limit: getIntParam(c, "limit", 0),
	}
}

// getUintParam parses a numeric path parameter
func getUintParam(c echo.Context, name string) (uint, error) {
	var value uint
	if _, err := fmt.Sscanf(c.Param(name), "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return value, nil
}
