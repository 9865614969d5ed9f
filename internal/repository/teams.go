package repository

import (
	"context"

	"cybershield/internal/models"

	"gorm.io/gorm"
)

// TeamRepository интерфейс для чтения команд-победителей
type TeamRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	ListByActivity(ctx context.Context, activityID uint) ([]models.Team, error)
	ListByParticipant(ctx context.Context, userID uint) ([]models.Team, error)
	CountByActivity(ctx context.Context, activityID uint) (int64, error)
}

// GormTeamRepository имплементация TeamRepository с использованием GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository создает новый репозиторий для работы с командами
func NewTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// FindByID находит команду по ID вместе с участниками
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Preload("Participants").Preload("Activity").First(&team, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &team, nil
}

// List возвращает все команды, новые первыми
func (r *GormTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).Preload("Participants").Order("id desc").Find(&teams).Error
	return teams, err
}

// ListByActivity возвращает команды, созданные для активности.
// Повторный импорт добавляет новые строки, поэтому дубликаты имен здесь ожидаемы.
func (r *GormTeamRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("activity_id = ?", activityID).
		Order("id").
		Find(&teams).Error
	return teams, err
}

// ListByParticipant возвращает команды, в которых состоит участник
func (r *GormTeamRepository) ListByParticipant(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Joins("JOIN team_participants tp ON tp.team_id = teams.id").
		Where("tp.user_id = ?", userID).
		Order("teams.id").
		Find(&teams).Error
	return teams, err
}

func (r *GormTeamRepository) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).Where("activity_id = ?", activityID).Count(&n).Error
	return n, err
}
