package importer

import (
	"context"
	"fmt"
	"time"

	"cybershield/internal/models"
	"cybershield/internal/workbook"

	"github.com/sirupsen/logrus"
)

// Activity sheet columns.
const (
	colActivityEvent  = 1
	colActivityTitle  = 4
	colActivityDay    = 5
	colActivityTime   = 6
	colModerator      = 7
	colFirstJury      = 8
	colLastJury       = 12
	colWinner         = 13
	defaultStartClock = 9 * time.Hour
	activityLength    = time.Hour
	winnerTrack       = "CyberShield Challenge"
	winnerScore       = 100
)

// activityRow is one activity line with the event it belongs to after merged-cell inheritance.
type activityRow struct {
	Line  int
	Cells []string
	Event *eventRef
}

// carryEvent is the fold step: a non-blank event cell re-resolves the current event
// (to nil when the title is unknown), a blank one keeps it.
func carryEvent(current *eventRef, row []string, events map[string]eventRef) *eventRef {
	title := workbook.Cell(row, colActivityEvent)
	if title == "" {
		return current
	}
	if ref, ok := events[normalize(title)]; ok {
		return &ref
	}
	return nil
}

// foldActivityRows threads the current event through the sheet and emits every row that names an activity.
// Line numbers are 1-based sheet rows.
func foldActivityRows(rows [][]string, events map[string]eventRef) []activityRow {
	var (
		current *eventRef
		out     []activityRow
	)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		current = carryEvent(current, row, events)
		if workbook.Cell(row, colActivityTitle) == "" {
			continue
		}
		out = append(out, activityRow{Line: i + 1, Cells: row, Event: current})
	}
	return out
}

func (r *run) loadActivities(ctx context.Context, rows [][]string) (Report, error) {
	var report Report
	for _, row := range foldActivityRows(rows, r.events) {
		teams, err := r.loadActivity(ctx, row)
		if err != nil {
			return Report{}, err
		}
		report.Activities++
		report.Teams += teams
	}
	return report, nil
}

func (r *run) loadActivity(ctx context.Context, row activityRow) (int, error) {
	title := workbook.Cell(row.Cells, colActivityTitle)
	if row.Event == nil && r.opts.Policy == RequireEvent {
		return 0, fmt.Errorf("%w: %q on row %d; import the events sheet first", ErrOrphanActivity, title, row.Line)
	}

	var eventID *uint
	if row.Event != nil {
		eventID = &row.Event.ID
	}
	start, end := activityWindow(row.Event, workbook.Cell(row.Cells, colActivityDay), workbook.Cell(row.Cells, colActivityTime))
	moderatorID, hasModerator := r.people[models.RoleModerator].lookup(workbook.Cell(row.Cells, colModerator))

	winner := workbook.Cell(row.Cells, colWinner)
	winnerID, hasWinner := r.people[models.RoleParticipant].lookup(winner)
	if winner != "" && !hasWinner {
		r.log.WithFields(logrus.Fields{"activity": title, "winner": winner}).Debug("winner is not a known participant")
	}

	activityID, err := r.store.UpsertActivity(ctx, eventID, title, func(a *models.Activity, created bool) {
		if created {
			a.Description = activityDescription(row.Event)
		}
		a.StartTime = start
		a.EndTime = end
		a.Location = activityLocation(row.Event)
		if hasModerator {
			a.ModeratorID = &moderatorID
		}
		if hasWinner {
			a.WinnerTeam = &winner
		}
	})
	if err != nil {
		return 0, fmt.Errorf("activity %q on row %d: %w", title, row.Line, err)
	}

	if err := r.store.ReplaceActivityJury(ctx, activityID, r.juryOf(row.Cells)); err != nil {
		return 0, fmt.Errorf("activity %q jury: %w", title, err)
	}

	if !hasWinner {
		return 0, nil
	}
	team := &models.Team{
		Name:       winner + " — победители",
		Track:      winnerTrack,
		Score:      winnerScore,
		ActivityID: &activityID,
	}
	if err := r.store.CreateTeam(ctx, team, []uint{winnerID}); err != nil {
		return 0, fmt.Errorf("activity %q winner team: %w", title, err)
	}
	return 1, nil
}

// juryOf resolves the jury columns, dropping names that are not in the jury sheet.
func (r *run) juryOf(cells []string) []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for i := colFirstJury; i <= colLastJury; i++ {
		id, ok := r.people[models.RoleJury].lookup(workbook.Cell(cells, i))
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// activityWindow is the event start plus (day-1) days at the decoded time, one hour long.
// Both are nil when the event has no start date.
func activityWindow(event *eventRef, day, clock string) (*time.Time, *time.Time) {
	if event == nil || event.Start == nil {
		return nil, nil
	}
	offset := max(0, workbook.Int(day, 1)-1)
	at, ok := workbook.Clock(clock)
	if !ok {
		at = defaultStartClock
	}
	start := event.Start.AddDays(offset).At(at)
	end := start.Add(activityLength)
	return &start, &end
}

func activityDescription(event *eventRef) string {
	if event == nil {
		return "Активность в рамках конференции"
	}
	return "Активность в рамках мероприятия " + event.Title
}

func activityLocation(event *eventRef) string {
	if event == nil || event.City == "" {
		return onlineVenue
	}
	return event.City + ", Главный зал"
}
