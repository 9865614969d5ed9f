package importer

import (
	"encoding/json"
	"fmt"

	"cybershield/internal/models"

	"github.com/sirupsen/logrus"
)

// Report counts what one import touched. Stages return their own Report and Import sums them.
type Report struct {
	Countries    int `json:"countries"`
	Cities       int `json:"cities"`
	Organizers   int `json:"organizers"`
	Moderators   int `json:"moderators"`
	Jury         int `json:"jury"`
	Participants int `json:"participants"`
	Events       int `json:"events"`
	Activities   int `json:"activities"`
	Teams        int `json:"teams"`
}

func roleReport(role models.Role, n int) Report {
	switch role {
	case models.RoleOrganizer:
		return Report{Organizers: n}
	case models.RoleModerator:
		return Report{Moderators: n}
	case models.RoleJury:
		return Report{Jury: n}
	default:
		return Report{Participants: n}
	}
}

func (r Report) Add(o Report) Report {
	return Report{
		Countries:    r.Countries + o.Countries,
		Cities:       r.Cities + o.Cities,
		Organizers:   r.Organizers + o.Organizers,
		Moderators:   r.Moderators + o.Moderators,
		Jury:         r.Jury + o.Jury,
		Participants: r.Participants + o.Participants,
		Events:       r.Events + o.Events,
		Activities:   r.Activities + o.Activities,
		Teams:        r.Teams + o.Teams,
	}
}

// Users is the aggregate person count across the four role sheets.
func (r Report) Users() int {
	return r.Organizers + r.Moderators + r.Jury + r.Participants
}

// Counts keys every counter by its JSON name.
func (r Report) Counts() map[string]int {
	return map[string]int{
		"countries":    r.Countries,
		"cities":       r.Cities,
		"organizers":   r.Organizers,
		"moderators":   r.Moderators,
		"jury":         r.Jury,
		"participants": r.Participants,
		"events":       r.Events,
		"activities":   r.Activities,
		"teams":        r.Teams,
	}
}

func (r Report) Fields() logrus.Fields {
	fields := make(logrus.Fields, 9)
	for k, v := range r.Counts() {
		fields[k] = v
	}
	return fields
}

func (r Report) String() string {
	return fmt.Sprintf("Импорт завершен: стран %d, городов %d, организаторов %d, модераторов %d, жюри %d, участников %d, мероприятий %d, активностей %d, команд %d",
		r.Countries, r.Cities, r.Organizers, r.Moderators, r.Jury, r.Participants, r.Events, r.Activities, r.Teams)
}

func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		Users int `json:"users"`
	}{plain(r), r.Users()})
}
