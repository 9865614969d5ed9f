package service

import (
	"context"
	"time"

	"cybershield/internal/models"
	"cybershield/internal/repository"
)

// DashboardService интерфейс сводной информации о конференции
type DashboardService interface {
	Summary(ctx context.Context) (repository.Counts, error)
	UsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpcomingActivities(ctx context.Context, limit int) ([]models.Activity, error)
	Events(ctx context.Context) ([]models.Event, error)
}

// DashboardServiceImpl имплементация DashboardService
type DashboardServiceImpl struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewDashboardService(repo *repository.Repository) *DashboardServiceImpl {
	return &DashboardServiceImpl{repo: repo, now: time.Now}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context) (repository.Counts, error) {
	return s.repo.Counts(ctx)
}

func (s *DashboardServiceImpl) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.repo.UsersByRole(ctx, role)
}

// UpcomingActivities returns activities starting from now on, earliest first.
func (s *DashboardServiceImpl) UpcomingActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.UpcomingActivities(ctx, s.now(), limit)
}

func (s *DashboardServiceImpl) Events(ctx context.Context) ([]models.Event, error) {
	return s.repo.ListEvents(ctx)
}
