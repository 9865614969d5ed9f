package importer

import (
	"fmt"
	"strings"

	"cybershield/internal/models"
)

// nameColumn holds the full name in every person sheet.
const nameColumn = 0

// Layout maps person fields to zero-based sheet columns. Optional columns are nil when a sheet lacks them.
type Layout struct {
	Email          int
	BirthDate      int
	Country        int
	Phone          int
	Password       int
	Photo          int
	Specialization *int
	Event          *int
	Gender         *int
}

func col(i int) *int { return &i }

var (
	OrganizerLayout   = Layout{Email: 1, BirthDate: 2, Country: 3, Phone: 4, Password: 5, Photo: 6, Gender: col(7)}
	ParticipantLayout = Layout{Email: 1, BirthDate: 2, Country: 3, Phone: 4, Password: 5, Photo: 6, Gender: col(7)}
	ModeratorLayout   = Layout{Email: 2, BirthDate: 3, Country: 4, Phone: 5, Password: 8, Photo: 9, Specialization: col(6), Event: col(7), Gender: col(1)}
	JuryLayout        = Layout{Email: 2, BirthDate: 3, Country: 4, Phone: 5, Password: 7, Photo: 8, Specialization: col(6), Gender: col(1)}
)

func DefaultLayouts() map[models.Role]Layout {
	return map[models.Role]Layout{
		models.RoleOrganizer:   OrganizerLayout,
		models.RoleModerator:   ModeratorLayout,
		models.RoleJury:        JuryLayout,
		models.RoleParticipant: ParticipantLayout,
	}
}

func (l Layout) String() string {
	opt := func(p *int) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("name=%d email=%d birth=%d country=%d phone=%d password=%d photo=%d specialization=%s event=%s gender=%s",
		nameColumn, l.Email, l.BirthDate, l.Country, l.Phone, l.Password, l.Photo,
		opt(l.Specialization), opt(l.Event), opt(l.Gender))
}

// Files names the eight workbooks relative to the source root.
type Files struct {
	Countries    string
	Cities       string
	Events       string
	Activities   string
	Organizers   string
	Moderators   string
	Jury         string
	Participants string
}

func DefaultFiles() Files {
	return Files{
		Countries:    "Cтраны_import.xlsx",
		Cities:       "Город_import.xlsx",
		Events:       "Мероприятия_import/Мероприятия_Информационная безопасность.xlsx",
		Activities:   "Активности_import.xlsx",
		Organizers:   "Организаторы_import/организаторы.xlsx",
		Moderators:   "Модераторы_import/Модераторы.xlsx",
		Jury:         "Жюри_import/жюри-4.xlsx",
		Participants: "Участники_import/участники-4.xlsx",
	}
}

// WithPrefix returns a copy with every name prefixed, e.g. "db/import/".
func (f Files) WithPrefix(prefix string) Files {
	if prefix == "" {
		return f
	}
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	return Files{
		Countries:    prefix + f.Countries,
		Cities:       prefix + f.Cities,
		Events:       prefix + f.Events,
		Activities:   prefix + f.Activities,
		Organizers:   prefix + f.Organizers,
		Moderators:   prefix + f.Moderators,
		Jury:         prefix + f.Jury,
		Participants: prefix + f.Participants,
	}
}

func (f Files) People(role models.Role) string {
	switch role {
	case models.RoleOrganizer:
		return f.Organizers
	case models.RoleModerator:
		return f.Moderators
	case models.RoleJury:
		return f.Jury
	default:
		return f.Participants
	}
}

// Slot resolves an upload slot name ("countries", "jury", ...) to its file name.
func (f Files) Slot(slot string) (string, bool) {
	switch slot {
	case "countries":
		return f.Countries, true
	case "cities":
		return f.Cities, true
	case "events":
		return f.Events, true
	case "activities":
		return f.Activities, true
	case "organizers":
		return f.Organizers, true
	case "moderators":
		return f.Moderators, true
	case "jury":
		return f.Jury, true
	case "participants":
		return f.Participants, true
	}
	return "", false
}

// All lists every file in import order.
func (f Files) All() []string {
	return []string{f.Countries, f.Cities, f.Organizers, f.Moderators, f.Jury, f.Participants, f.Events, f.Activities}
}
