package service

import (
	"context"
	"errors"
	"fmt"

	"cybershield/internal/models"
	"cybershield/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	minScore = 0
	maxScore = 100
)

var ErrInvalidScore = errors.New("invalid score")

type ScoreInput struct {
	ActivityID    uint   `json:"activityId" binding:"required"`
	ParticipantID uint   `json:"participantId" binding:"required"`
	JuryID        *uint  `json:"juryId"`
	Value         int    `json:"value"`
	Comment       string `json:"comment"`
}

// ScoreService интерфейс сервиса оценок жюри
type ScoreService interface {
	Submit(ctx context.Context, in ScoreInput) (*models.Score, error)
	ByActivity(ctx context.Context, activityID uint) ([]models.Score, error)
	ByParticipant(ctx context.Context, participantID uint) ([]models.Score, error)
	Average(ctx context.Context, activityID, participantID uint) (decimal.Decimal, error)
}

// ScoreServiceImpl имплементация ScoreService
type ScoreServiceImpl struct {
	repo *repository.Repository
}

func NewScoreService(repo *repository.Repository) *ScoreServiceImpl {
	return &ScoreServiceImpl{repo: repo}
}

// Submit проверяет и сохраняет оценку
func (s *ScoreServiceImpl) Submit(ctx context.Context, in ScoreInput) (*models.Score, error) {
	if in.Value < minScore || in.Value > maxScore {
		return nil, fmt.Errorf("%w: value %d is outside %d..%d", ErrInvalidScore, in.Value, minScore, maxScore)
	}
	if _, err := s.repo.GetActivityByID(ctx, in.ActivityID); err != nil {
		return nil, fmt.Errorf("activity %d: %w", in.ActivityID, err)
	}
	participant, err := s.repo.GetUserByID(ctx, in.ParticipantID)
	if err != nil {
		return nil, fmt.Errorf("participant %d: %w", in.ParticipantID, err)
	}
	if participant.Role != models.RoleParticipant {
		return nil, fmt.Errorf("%w: user %d is not a participant", ErrInvalidScore, in.ParticipantID)
	}
	if in.JuryID != nil {
		ok, err := s.repo.IsJuryMember(ctx, in.ActivityID, *in.JuryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: user %d is not on the jury of activity %d", ErrInvalidScore, *in.JuryID, in.ActivityID)
		}
	}

	score := &models.Score{
		ActivityID:    in.ActivityID,
		ParticipantID: in.ParticipantID,
		JuryID:        in.JuryID,
		Value:         in.Value,
		Comment:       in.Comment,
	}
	if err := s.repo.CreateScore(ctx, score); err != nil {
		return nil, err
	}
	return score, nil
}

func (s *ScoreServiceImpl) ByActivity(ctx context.Context, activityID uint) ([]models.Score, error) {
	return s.repo.ScoresByActivity(ctx, activityID)
}

func (s *ScoreServiceImpl) ByParticipant(ctx context.Context, participantID uint) ([]models.Score, error) {
	return s.repo.ScoresByParticipant(ctx, participantID)
}

// Average is the mean score rounded half up to two places; zero without scores.
func (s *ScoreServiceImpl) Average(ctx context.Context, activityID, participantID uint) (decimal.Decimal, error) {
	values, err := s.repo.ScoreValues(ctx, activityID, participantID)
	if err != nil {
		return decimal.Zero, err
	}
	return average(values), nil
}

func average(values []int) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromInt(int64(v)))
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(values))), 2)
}
