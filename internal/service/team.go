package service

import (
	"context"
	"errors"

	"cybershield/internal/models"
	"cybershield/internal/repository"
)

var ErrNotParticipant = errors.New("user is not a participant")

// TeamService интерфейс сервиса для работы с командами победителей
type TeamService interface {
	List(ctx context.Context) ([]models.Team, error)
	GetTeamByID(ctx context.Context, id uint) (*models.Team, error)
	ByActivity(ctx context.Context, activityID uint) ([]models.Team, error)
	ByParticipant(ctx context.Context, userID uint) ([]models.Team, error)
}

// TeamServiceImpl имплементация TeamService
type TeamServiceImpl struct {
	repo     repository.TeamRepository
	coreRepo *repository.Repository
}

// NewTeamService создает новый сервис для работы с командами
func NewTeamService(teamRepo repository.TeamRepository, coreRepo *repository.Repository) *TeamServiceImpl {
	return &TeamServiceImpl{
		repo:     teamRepo,
		coreRepo: coreRepo,
	}
}

func (s *TeamServiceImpl) List(ctx context.Context) ([]models.Team, error) {
	return s.repo.List(ctx)
}

func (s *TeamServiceImpl) GetTeamByID(ctx context.Context, id uint) (*models.Team, error) {
	return s.repo.FindByID(ctx, id)
}

// ByActivity возвращает команды активности; несуществующая активность дает ErrNotFound
func (s *TeamServiceImpl) ByActivity(ctx context.Context, activityID uint) ([]models.Team, error) {
	if _, err := s.coreRepo.GetActivityByID(ctx, activityID); err != nil {
		return nil, err
	}
	return s.repo.ListByActivity(ctx, activityID)
}

func (s *TeamServiceImpl) ByParticipant(ctx context.Context, userID uint) ([]models.Team, error) {
	user, err := s.coreRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleParticipant {
		return nil, ErrNotParticipant
	}
	return s.repo.ListByParticipant(ctx, userID)
}
