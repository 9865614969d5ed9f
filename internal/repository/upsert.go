package repository

import (
	"context"
	"errors"
	"strings"

	"cybershield/internal/models"

	"gorm.io/gorm"
)

// Key normalizes a natural key: trimmed and lower-cased.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UpsertCountry finds a country by case-insensitive name, refreshing its iso code, or creates it.
func (r *Repository) UpsertCountry(ctx context.Context, name string, isoCode *string) (uint, error) {
	var country models.Country
	err := r.db.WithContext(ctx).Where("name_key = ?", Key(name)).First(&country).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		country = models.Country{Name: name, NameKey: Key(name), IsoCode: isoCode}
		if err := r.db.WithContext(ctx).Create(&country).Error; err != nil {
			return 0, err
		}
		return country.ID, nil
	case err != nil:
		return 0, err
	}

	country.IsoCode = isoCode
	if err := r.db.WithContext(ctx).Save(&country).Error; err != nil {
		return 0, err
	}
	return country.ID, nil
}

// UpsertCity matches by (name, country) or, without a country, by name alone.
func (r *Repository) UpsertCity(ctx context.Context, name string, countryID *uint) (uint, error) {
	q := r.db.WithContext(ctx).Where("name_key = ?", Key(name))
	if countryID != nil {
		q = q.Where("country_id = ?", *countryID)
	}

	var city models.City
	err := q.Order("id").First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		city = models.City{Name: name, NameKey: Key(name), CountryID: countryID}
		if err := r.db.WithContext(ctx).Create(&city).Error; err != nil {
			return 0, err
		}
		return city.ID, nil
	}
	if err != nil {
		return 0, err
	}
	return city.ID, nil
}

// UpsertUser finds a user by case-insensitive email (or builds a new one) and hands it to apply
// before saving. created tells apply whether the row is new.
func (r *Repository) UpsertUser(ctx context.Context, email string, apply func(u *models.User, created bool)) (uint, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email_key = ?", Key(email)).First(&user).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return 0, err
	}
	if created {
		user = models.User{}
	}
	apply(&user, created)
	user.Email = email
	user.EmailKey = Key(email)
	if err := r.db.WithContext(ctx).Omit("Country", "City").Save(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (r *Repository) UpsertEvent(ctx context.Context, title string, apply func(e *models.Event, created bool)) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("title_key = ?", Key(title)).First(&event).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return nil, err
	}
	if created {
		event = models.Event{Title: title, TitleKey: Key(title)}
	}
	apply(&event, created)
	if err := r.db.WithContext(ctx).Omit("City", "Organizers", "Activities").Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpsertActivity matches on (event, case-insensitive title); a nil eventID matches event-less activities.
func (r *Repository) UpsertActivity(ctx context.Context, eventID *uint, title string, apply func(a *models.Activity, created bool)) (uint, error) {
	q := r.db.WithContext(ctx).Where("title_key = ?", Key(title))
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	} else {
		q = q.Where("event_id IS NULL")
	}

	var activity models.Activity
	err := q.First(&activity).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return 0, err
	}
	if created {
		activity = models.Activity{Title: title, TitleKey: Key(title), EventID: eventID}
	}
	apply(&activity, created)
	if err := r.db.WithContext(ctx).Omit("Event", "Moderator", "Jury").Save(&activity).Error; err != nil {
		return 0, err
	}
	return activity.ID, nil
}

func (r *Repository) ReplaceEventOrganizers(ctx context.Context, eventID uint, organizerIDs []uint) error {
	return r.replaceUsers(ctx, &models.Event{ID: eventID}, "Organizers", organizerIDs)
}

func (r *Repository) ReplaceActivityJury(ctx context.Context, activityID uint, juryIDs []uint) error {
	return r.replaceUsers(ctx, &models.Activity{ID: activityID}, "Jury", juryIDs)
}

func (r *Repository) replaceUsers(ctx context.Context, owner interface{}, association string, ids []uint) error {
	assoc := r.db.WithContext(ctx).Model(owner).Association(association)
	if len(ids) == 0 {
		return assoc.Clear()
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users, ids).Error; err != nil {
		return err
	}
	return assoc.Replace(users)
}

// CreateTeam always inserts; teams have no natural key.
func (r *Repository) CreateTeam(ctx context.Context, team *models.Team, participantIDs []uint) error {
	if len(participantIDs) > 0 {
		if err := r.db.WithContext(ctx).Find(&team.Participants, participantIDs).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Omit("Activity").Create(team).Error
}
