package importer

import (
	"context"
	"fmt"
	"strings"

	"cybershield/internal/models"
	"cybershield/internal/repository"
	"cybershield/internal/workbook"

	"github.com/sirupsen/logrus"
)

const generatedEmailDomain = "@cybershield.example"

var photoFolders = map[models.Role]string{
	models.RoleOrganizer:   "organizers",
	models.RoleModerator:   "moderators",
	models.RoleJury:        "jury",
	models.RoleParticipant: "participants",
}

// personIndex maps normalized full names to user ids. A repeated name keeps its first position
// but takes the latest id.
type personIndex struct {
	ids   map[string]uint
	order []string
}

func newPersonIndex() *personIndex {
	return &personIndex{ids: make(map[string]uint)}
}

func (p *personIndex) put(name string, id uint) {
	key := normalize(name)
	if _, ok := p.ids[key]; !ok {
		p.order = append(p.order, key)
	}
	p.ids[key] = id
}

func (p *personIndex) lookup(name string) (uint, bool) {
	if p == nil || name == "" {
		return 0, false
	}
	id, ok := p.ids[normalize(name)]
	return id, ok
}

// first returns up to n distinct ids in insertion order.
func (p *personIndex) first(n int) []uint {
	if p == nil {
		return nil
	}
	ids := make([]uint, 0, n)
	seen := make(map[uint]bool, n)
	for _, key := range p.order {
		if len(ids) == n {
			break
		}
		id := p.ids[key]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func (p *personIndex) Len() int { return len(p.ids) }

// person is one decoded row of a person sheet.
type person struct {
	FullName     string
	FirstName    string
	LastName     string
	Email        string
	BirthDate    *models.Date
	CountryID    *uint
	Phone        string
	Organization string
	Bio          *string
	PhotoPath    *string
}

func (r *run) loadPeople(ctx context.Context, role models.Role, rows [][]string) (Report, error) {
	layout, ok := r.opts.Layouts[role]
	if !ok {
		return Report{}, fmt.Errorf("no column layout for role %s", role)
	}

	index := newPersonIndex()
	for _, row := range dataRows(rows) {
		p, ok := r.decodePerson(role, layout, row)
		if !ok {
			continue
		}
		id, err := r.store.UpsertUser(ctx, p.Email, func(u *models.User, _ bool) {
			u.FullName = p.FullName
			u.FirstName = p.FirstName
			u.LastName = p.LastName
			u.Role = role
			u.BirthDate = p.BirthDate
			u.CityID = nil
			u.Organization = p.Organization
			u.Phone = p.Phone
			u.Bio = p.Bio
			u.PhotoPath = p.PhotoPath
			u.CountryID = p.CountryID
		})
		if err != nil {
			return Report{}, fmt.Errorf("%s %q: %w", strings.ToLower(string(role)), p.FullName, err)
		}
		index.put(p.FullName, id)
	}
	r.people[role] = index
	r.log.WithFields(logrus.Fields{"role": role, "people": index.Len()}).Debug("people loaded")
	return roleReport(role, index.Len()), nil
}

func (r *run) decodePerson(role models.Role, layout Layout, row []string) (person, bool) {
	name := workbook.Cell(row, nameColumn)
	if name == "" {
		return person{}, false
	}
	optCell := func(idx *int) string {
		if idx == nil {
			return ""
		}
		return workbook.Cell(row, *idx)
	}

	p := person{
		FullName:  name,
		Email:     workbook.Cell(row, layout.Email),
		CountryID: r.countryRef(workbook.Cell(row, layout.Country)),
		Phone:     workbook.Cell(row, layout.Phone),
	}
	p.LastName, p.FirstName = splitName(name)
	if p.Email == "" {
		p.Email = generatedEmail(name)
	}
	if d, ok := workbook.Date(workbook.Cell(row, layout.BirthDate)); ok {
		bd := models.DateOf(d)
		p.BirthDate = &bd
	}
	p.Organization = organization(role, optCell(layout.Event))

	password := ""
	if role == models.RoleParticipant {
		password = workbook.Cell(row, layout.Password)
	}
	p.Bio = bio(optCell(layout.Specialization), optCell(layout.Gender), password)

	if photo := workbook.Cell(row, layout.Photo); photo != "" {
		path := photoFolders[role] + "/" + photo
		p.PhotoPath = &path
	}
	return p, true
}

func normalize(s string) string {
	return repository.Key(s)
}

// generatedEmail derives a stable address for people without one: "Иван Иванов" -> "иван.иванов@cybershield.example".
func generatedEmail(fullName string) string {
	return strings.ReplaceAll(normalize(fullName), " ", ".") + generatedEmailDomain
}

// splitName treats the first word as the last name and the second as the first name.
func splitName(fullName string) (last, first string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], parts[1]
}

func organization(role models.Role, eventTitle string) string {
	switch role {
	case models.RoleOrganizer:
		return "Организационный комитет"
	case models.RoleModerator:
		if eventTitle != "" {
			return eventTitle
		}
		return "Модератор активностей"
	case models.RoleJury:
		return "Судейская коллегия"
	default:
		return "Участник программы"
	}
}

func bio(specialization, gender, password string) *string {
	var parts []string
	if specialization != "" {
		parts = append(parts, "Направление: "+specialization)
	}
	if gender != "" {
		parts = append(parts, "Пол: "+gender)
	}
	if password != "" {
		parts = append(parts, "Временный пароль: "+password)
	}
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, ". ")
	return &s
}
