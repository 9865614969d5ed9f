package repository

import (
	"context"
	"errors"
	"time"

	"cybershield/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var ErrNotFound = errors.New("record not found")

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// WithTransaction runs fn against a repository bound to one transaction.
// Any error from fn rolls the whole transaction back.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(models.All()...)
}

func (r *Repository) Teams() *GormTeamRepository {
	return NewTeamRepository(r.db)
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Country").Order("full_name").Find(&users).Error
	return users, err
}

func (r *Repository) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Country").Where("role = ?", role).Order("full_name").Find(&users).Error
	return users, err
}

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("City").
		Preload("Organizers").
		Order("start_date").
		Order("id").
		Find(&events).Error
	return events, err
}

func (r *Repository) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("City").
		Preload("Organizers").
		Preload("Activities").
		First(&event, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (r *Repository) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("City").
		Preload("Organizers").
		Preload("Activities").
		Where("slug = ?", slug).
		First(&event).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (r *Repository) SaveEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Organizers", "Activities", "City").Save(event).Error
}

func (r *Repository) ListActivities(ctx context.Context, eventID *uint) ([]models.Activity, error) {
	var activities []models.Activity
	q := r.db.WithContext(ctx).Preload("Moderator").Preload("Jury")
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	err := q.Order("start_time").Order("id").Find(&activities).Error
	return activities, err
}

func (r *Repository) GetActivityByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Moderator").
		Preload("Jury").
		First(&activity, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &activity, nil
}

// UpcomingActivities returns activities starting at or after now, earliest first.
func (r *Repository) UpcomingActivities(ctx context.Context, now time.Time, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("start_time >= ?", now).
		Order("start_time").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// IsJuryMember reports whether userID sits on the jury of activityID.
func (r *Repository) IsJuryMember(ctx context.Context, activityID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("activity_jury").
		Where("activity_id = ? AND jury_id = ?", activityID, userID).
		Count(&n).Error
	return n > 0, err
}

type Counts struct {
	Events       int64 `json:"events"`
	Activities   int64 `json:"activities"`
	Participants int64 `json:"participants"`
	Moderators   int64 `json:"moderators"`
	Jury         int64 `json:"jury"`
	Organizers   int64 `json:"organizers"`
	Teams        int64 `json:"teams"`
}

func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Event{}).Count(&c.Events).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Activity{}).Count(&c.Activities).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Team{}).Count(&c.Teams).Error; err != nil {
		return c, err
	}

	var rows []struct {
		Role  models.Role
		Total int64
	}
	err := db.Model(&models.User{}).Select("role, count(*) as total").Group("role").Scan(&rows).Error
	if err != nil {
		return c, err
	}
	for _, row := range rows {
		switch row.Role {
		case models.RoleParticipant:
			c.Participants = row.Total
		case models.RoleModerator:
			c.Moderators = row.Total
		case models.RoleJury:
			c.Jury = row.Total
		case models.RoleOrganizer:
			c.Organizers = row.Total
		}
	}
	return c, nil
}

func (r *Repository) CreateScore(ctx context.Context, score *models.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *Repository) ScoresByActivity(ctx context.Context, activityID uint) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).Order("id").Find(&scores).Error
	return scores, err
}

func (r *Repository) ScoresByParticipant(ctx context.Context, participantID uint) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).Where("participant_id = ?", participantID).Order("id").Find(&scores).Error
	return scores, err
}

func (r *Repository) ScoreValues(ctx context.Context, activityID, participantID uint) ([]int, error) {
	var values []int
	err := r.db.WithContext(ctx).
		Model(&models.Score{}).
		Where("activity_id = ? AND participant_id = ?", activityID, participantID).
		Pluck("value", &values).Error
	return values, err
}

func (r *Repository) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) UpdateImportRun(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *Repository) GetImportRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &run, nil
}

func (r *Repository) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	var runs []models.ImportRun
	err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *Repository) GetAdmin(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		return nil, mapErr(err)
	}
	return &admin, nil
}

// EnsureAdmin creates the admin account or resets its password.
func (r *Repository) EnsureAdmin(ctx context.Context, username, password string) error {
	admin, err := r.GetAdmin(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return r.db.WithContext(ctx).Create(&models.Admin{Username: username, Password: password}).Error
	}
	if err != nil {
		return err
	}
	admin.Password = password
	return r.db.WithContext(ctx).Save(admin).Error
}
