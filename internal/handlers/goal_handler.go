package handlers

import (
	stderrors "errors"
	"net/http"

	"centsible/internal/dto"
	"centsible/internal/errors"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GoalHandler handles savings goal endpoints
type GoalHandler struct {
	goalService services.GoalServiceInterface
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService services.GoalServiceInterface) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// CreateGoal opens a savings goal
// @Summary Create a savings goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SavingsGoalRequest true "Goal details"
// @Success 201 {object} dto.SavingsGoalResponse
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SavingsGoalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	goal, err := h.goalService.CreateGoal(userID, req)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidTargetDate) {
			return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("Target date must be in the future"))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, goal)
}

// ListGoals returns the user's savings goals ordered by priority
// @Summary List savings goals
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.SavingsGoalResponse
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goals, err := h.goalService.ListGoals(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, goals)
}

// GetGoal returns one savings goal
// @Summary Get a savings goal
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} dto.SavingsGoalResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - GOAL_001"
// @Router /goals/{id} [get]
func (h *GoalHandler) GetGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Goal ID must be a UUID"))
	}

	goal, err := h.goalService.GetGoal(userID, goalID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrGoalNotFound) {
			return SendError(c, errors.GoalNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, goal)
}

// Contribute records a contribution towards a goal
// @Summary Contribute to a savings goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body dto.ContributionRequest true "Contribution amount"
// @Success 200 {object} dto.SavingsGoalResponse
// @Router /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Goal ID must be a UUID"))
	}

	var req dto.ContributionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	goal, err := h.goalService.Contribute(userID, goalID, req)
	if err != nil {
		if stderrors.Is(err, repositories.ErrGoalNotFound) {
			return SendError(c, errors.GoalNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, goal)
}

// DeleteGoal removes a savings goal
// @Summary Delete a savings goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204 "Deleted"
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Goal ID must be a UUID"))
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		if stderrors.Is(err, repositories.ErrGoalNotFound) {
			return SendError(c, errors.GoalNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
