package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOrganizer   Role = "ORGANIZER"
	RoleModerator   Role = "MODERATOR"
	RoleJury        Role = "JURY"
	RoleParticipant Role = "PARTICIPANT"
)

// Roles lists the roles in import order.
var Roles = []Role{RoleOrganizer, RoleModerator, RoleJury, RoleParticipant}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

type Country struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	NameKey   string  `gorm:"uniqueIndex;not null" json:"-"`
	IsoCode   *string `json:"isoCode"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type City struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"not null" json:"name"`
	NameKey   string   `gorm:"index;not null" json:"-"`
	CountryID *uint    `json:"countryId"`
	Country   *Country `json:"country,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a role-tagged conference person. Email is the identity.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	FullName     string   `gorm:"not null" json:"fullName"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `gorm:"not null" json:"email"`
	EmailKey     string   `gorm:"uniqueIndex;not null" json:"-"`
	Role         Role     `gorm:"index;not null" json:"role"`
	BirthDate    *Date    `gorm:"type:date" json:"birthDate"`
	Organization string   `json:"organization"`
	Phone        string   `json:"phone"`
	Bio          *string  `json:"bio"`
	PhotoPath    *string  `json:"photoPath"`
	CountryID    *uint    `json:"countryId"`
	Country      *Country `json:"country,omitempty"`
	CityID       *uint    `json:"cityId"`
	City         *City    `json:"city,omitempty"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	TitleKey    string     `gorm:"uniqueIndex;not null" json:"-"`
	Slug        string     `gorm:"index" json:"slug"`
	Description string     `gorm:"size:4096" json:"description"`
	StartDate   *Date      `gorm:"type:date" json:"startDate"`
	EndDate     *Date      `gorm:"type:date" json:"endDate"`
	VenueName   string     `json:"venueName"`
	ImagePath   string     `json:"imagePath"`
	CityID      *uint      `json:"cityId"`
	City        *City      `json:"city,omitempty"`
	Organizers  []User     `gorm:"many2many:event_organizers;joinForeignKey:EventID;joinReferences:OrganizerID" json:"organizers,omitempty"`
	Activities  []Activity `json:"activities,omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Activity struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	TitleKey    string     `gorm:"uniqueIndex:idx_activity_event_title;not null" json:"-"`
	EventID     *uint      `gorm:"uniqueIndex:idx_activity_event_title" json:"eventId"`
	Event       *Event     `json:"event,omitempty"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	ModeratorID *uint      `json:"moderatorId"`
	Moderator   *User      `json:"moderator,omitempty"`
	Jury        []User     `gorm:"many2many:activity_jury;joinForeignKey:ActivityID;joinReferences:JuryID" json:"jury,omitempty"`
	WinnerTeam  *string    `json:"winnerTeam"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Team rows are inserted on every import that sees a winner; nothing deduplicates them.
type Team struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Track        string    `json:"track"`
	Score        int       `json:"score"`
	ActivityID   *uint     `gorm:"index" json:"activityId"`
	Activity     *Activity `json:"activity,omitempty"`
	Participants []User    `gorm:"many2many:team_participants;joinForeignKey:TeamID;joinReferences:UserID" json:"participants,omitempty"`
	CreatedAt    time.Time
}

type Score struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ActivityID    uint   `gorm:"index;not null" json:"activityId"`
	ParticipantID uint   `gorm:"index;not null" json:"participantId"`
	JuryID        *uint  `json:"juryId"`
	Value         int    `gorm:"not null" json:"value"`
	Comment       string `json:"comment"`
	CreatedAt     time.Time
}

type ImportStatus string

const (
	ImportRunning   ImportStatus = "running"
	ImportSucceeded ImportStatus = "succeeded"
	ImportFailed    ImportStatus = "failed"
)

type ImportRun struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Trigger    string       `json:"trigger"`
	Source     string       `json:"source"`
	Policy     string       `json:"policy"`
	Status     ImportStatus `gorm:"index" json:"status"`
	Error      string       `json:"error,omitempty"`
	Countries  int          `json:"countries"`
	Cities     int          `json:"cities"`
	Users      int          `json:"users"`
	Events     int          `json:"events"`
	Activities int          `json:"activities"`
	Teams      int          `json:"teams"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt *time.Time   `json:"finishedAt"`
}

type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"-"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Admin) BeforeSave(tx *gorm.DB) error {
	if a.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		a.PasswordHash = string(hashed)
	}
	return nil
}

func (a *Admin) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Country{}, &City{}, &User{}, &Event{}, &Activity{}, &Team{}, &Score{}, &ImportRun{}, &Admin{},
	}
}
