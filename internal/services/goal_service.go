package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"centsible/internal/dto"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTargetDate = errors.New("target date must be in the future")
)

// GoalServiceInterface manages savings goals and their contributions
type GoalServiceInterface interface {
	CreateGoal(userID uuid.UUID, req dto.SavingsGoalRequest) (*dto.SavingsGoalResponse, error)
	ListGoals(userID uuid.UUID) ([]dto.SavingsGoalResponse, error)
	GetGoal(userID uuid.UUID, goalID uuid.UUID) (*dto.SavingsGoalResponse, error)
	Contribute(userID uuid.UUID, goalID uuid.UUID, req dto.ContributionRequest) (*dto.SavingsGoalResponse, error)
	DeleteGoal(userID uuid.UUID, goalID uuid.UUID) error
}

// goalService implements GoalServiceInterface
type goalService struct {
	goalRepo repositories.SavingsGoalRepositoryInterface
	logger   *slog.Logger
}

// NewGoalService creates a savings goal service
func NewGoalService(goalRepo repositories.SavingsGoalRepositoryInterface, logger *slog.Logger) GoalServiceInterface {
	return &goalService{
		goalRepo: goalRepo,
		logger:   logger,
	}
}

// CreateGoal opens a new savings goal
func (s *goalService) CreateGoal(userID uuid.UUID, req dto.SavingsGoalRequest) (*dto.SavingsGoalResponse, error) {
	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("invalid target date: %w", err)
	}
	if !targetDate.After(time.Now()) {
		return nil, ErrInvalidTargetDate
	}

	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: target,
		TargetDate:   targetDate,
		Priority:     req.Priority,
	}
	if err := s.goalRepo.Create(goal); err != nil {
		return nil, err
	}

	s.logger.Info("savings goal created", "user_id", userID, "goal_id", goal.ID)
	return toGoalResponse(goal), nil
}

// ListGoals returns the user's goals ordered by priority
func (s *goalService) ListGoals(userID uuid.UUID) ([]dto.SavingsGoalResponse, error) {
	goals, err := s.goalRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SavingsGoalResponse, 0, len(goals))
	for i := range goals {
		responses = append(responses, *toGoalResponse(&goals[i]))
	}
	return responses, nil
}

// GetGoal returns one goal, scoped to its owner
func (s *goalService) GetGoal(userID uuid.UUID, goalID uuid.UUID) (*dto.SavingsGoalResponse, error) {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	return toGoalResponse(goal), nil
}

// Contribute records a contribution. Reaching the target completes the goal.
func (s *goalService) Contribute(userID uuid.UUID, goalID uuid.UUID, req dto.ContributionRequest) (*dto.SavingsGoalResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid contribution amount: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("contribution amount must be greater than zero")
	}

	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.AddContribution(amount)
	if err := s.goalRepo.Update(goal); err != nil {
		return nil, err
	}

	return toGoalResponse(goal), nil
}

// DeleteGoal removes a goal, scoped to its owner
func (s *goalService) DeleteGoal(userID uuid.UUID, goalID uuid.UUID) error {
	if _, err := s.ownedGoal(userID, goalID); err != nil {
		return err
	}
	return s.goalRepo.Delete(goalID)
}

func (s *goalService) ownedGoal(userID uuid.UUID, goalID uuid.UUID) (*models.SavingsGoal, error) {
	goal, err := s.goalRepo.GetByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, repositories.ErrGoalNotFound
	}
	return goal, nil
}

func toGoalResponse(goal *models.SavingsGoal) *dto.SavingsGoalResponse {
	return &dto.SavingsGoalResponse{
		ID:                 goal.ID.String(),
		Name:               goal.Name,
		Description:        goal.Description,
		TargetAmount:       goal.TargetAmount.StringFixed(2),
		CurrentAmount:      goal.CurrentAmount.StringFixed(2),
		TargetDate:         goal.TargetDate.Format("2006-01-02"),
		Priority:           goal.Priority,
		Status:             goal.Status,
		ProgressPercentage: goal.ProgressPercentage(),
		MonthlyTarget:      goal.MonthlyTarget(time.Now()).StringFixed(2),
		CreatedAt:          goal.CreatedAt,
	}
}
