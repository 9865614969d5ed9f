package importer

import (
	"context"
	"fmt"

	"cybershield/internal/models"
	"cybershield/internal/workbook"

	"github.com/gosimple/slug"
)

const (
	maxEventOrganizers = 3
	mainVenue          = "Главная площадка"
	onlineVenue        = "Онлайн"
)

// eventRef is what the activity pass needs to know about an imported event.
type eventRef struct {
	ID    uint
	Title string
	Start *models.Date
	City  string
}

func (r *run) loadEvents(ctx context.Context, rows [][]string) (Report, error) {
	r.events = make(map[string]eventRef)
	organizers := r.people[models.RoleOrganizer].first(maxEventOrganizers)

	for _, row := range dataRows(rows) {
		title := workbook.Cell(row, 1)
		if title == "" {
			continue
		}
		var start, end *models.Date
		if d, ok := workbook.Date(workbook.Cell(row, 2)); ok {
			s := models.DateOf(d)
			e := eventEnd(s, workbook.Int(workbook.Cell(row, 3), 1))
			start, end = &s, &e
		}
		c, hasCity := r.cityRef(workbook.Cell(row, 4))

		event, err := r.store.UpsertEvent(ctx, title, func(e *models.Event, created bool) {
			if created {
				e.Description = fmt.Sprintf("Программа конференции «%s».", title)
			}
			e.Slug = eventSlug(title)
			e.StartDate = start
			e.EndDate = end
			e.ImagePath = "events/" + e.Slug + ".jpg"
			if hasCity {
				e.CityID = &c.id
				e.VenueName = mainVenue + " " + c.name
			} else {
				e.CityID = nil
				e.VenueName = onlineVenue
			}
		})
		if err != nil {
			return Report{}, fmt.Errorf("event %q: %w", title, err)
		}
		if err := r.store.ReplaceEventOrganizers(ctx, event.ID, organizers); err != nil {
			return Report{}, fmt.Errorf("event %q organizers: %w", title, err)
		}

		ref := eventRef{ID: event.ID, Title: event.Title, Start: start}
		if hasCity {
			ref.City = c.name
		}
		r.events[normalize(title)] = ref
	}
	return Report{Events: len(r.events)}, nil
}

// eventEnd is start + max(0, days-1).
func eventEnd(start models.Date, days int) models.Date {
	return start.AddDays(max(0, days-1))
}

func eventSlug(title string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return "event"
}
