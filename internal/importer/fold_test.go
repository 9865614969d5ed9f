package importer

import (
	"encoding/json"
	"testing"
	"time"

	"cybershield/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activitySheet(rows ...[]string) [][]string {
	header := []string{"№", "Мероприятие", "", "", "Активность"}
	return append([][]string{header}, rows...)
}

func TestFoldActivityRows_InheritsEvent(t *testing.T) {
	events := map[string]eventRef{
		"ctf":    {ID: 1, Title: "CTF"},
		"summit": {ID: 2, Title: "Summit"},
	}
	rows := activitySheet(
		[]string{"1", "ctf", "", "", "Opening"},
		[]string{"2", "", "", "", "Workshop"},
		[]string{"3", "", "", "", ""},
		[]string{"4", "SUMMIT", "", "", "Keynote"},
		[]string{"5", "", "", "", "Panel"},
	)

	out := foldActivityRows(rows, events)
	require.Len(t, out, 4)

	got := make(map[string]uint)
	for _, row := range out {
		require.NotNil(t, row.Event, row.Cells[4])
		got[row.Cells[4]] = row.Event.ID
	}
	assert.Equal(t, map[string]uint{"Opening": 1, "Workshop": 1, "Keynote": 2, "Panel": 2}, got)
	assert.Equal(t, 2, out[0].Line)
	assert.Equal(t, 6, out[3].Line)
}

func TestFoldActivityRows_NoPrecedingEvent(t *testing.T) {
	rows := activitySheet(
		[]string{"1", "", "", "", "Orphan"},
	)
	out := foldActivityRows(rows, map[string]eventRef{"ctf": {ID: 1}})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Event)
}

func TestFoldActivityRows_UnknownTitleClearsEvent(t *testing.T) {
	events := map[string]eventRef{"ctf": {ID: 1, Title: "CTF"}}
	rows := activitySheet(
		[]string{"1", "CTF", "", "", "Opening"},
		[]string{"2", "Unknown", "", "", "Talk"},
		[]string{"3", "", "", "", "Follow-up"},
	)
	out := foldActivityRows(rows, events)
	require.Len(t, out, 3)
	assert.NotNil(t, out[0].Event)
	assert.Nil(t, out[1].Event)
	assert.Nil(t, out[2].Event)
}

func TestEventEnd(t *testing.T) {
	start := models.NewDate(2024, time.May, 10)
	assert.Equal(t, "2024-05-10", eventEnd(start, 1).String())
	assert.Equal(t, "2024-05-12", eventEnd(start, 3).String())
	assert.Equal(t, "2024-05-10", eventEnd(start, 0).String())
	assert.Equal(t, "2024-05-10", eventEnd(start, -4).String())
}

func TestActivityWindow(t *testing.T) {
	start := models.NewDate(2024, time.May, 10)
	event := &eventRef{ID: 1, Start: &start}

	from, to := activityWindow(event, "3", "0.4375")
	require.NotNil(t, from)
	assert.Equal(t, time.Date(2024, time.May, 12, 10, 30, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, time.May, 12, 11, 30, 0, 0, time.UTC), *to)

	from, _ = activityWindow(event, "", "later")
	assert.Equal(t, time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC), *from)

	from, _ = activityWindow(event, "0", "")
	assert.Equal(t, time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC), *from)

	from, to = activityWindow(&eventRef{ID: 2}, "1", "0.5")
	assert.Nil(t, from)
	assert.Nil(t, to)

	from, to = activityWindow(nil, "1", "0.5")
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestGeneratedEmail(t *testing.T) {
	assert.Equal(t, "иван.иванов@cybershield.example", generatedEmail("Иван Иванов"))
	assert.Equal(t, generatedEmail("Иван Иванов"), generatedEmail("ИВАН ИВАНОВ"))
	assert.Equal(t, "john.smith@cybershield.example", generatedEmail("  John Smith "))
}

func TestBioAndOrganization(t *testing.T) {
	assert.Nil(t, bio("", "", ""))
	assert.Equal(t, "Направление: Pentest. Пол: М", *bio("Pentest", "М", ""))
	assert.Equal(t, "Пол: Ж. Временный пароль: qwerty", *bio("", "Ж", "qwerty"))

	assert.Equal(t, "Организационный комитет", organization(models.RoleOrganizer, "x"))
	assert.Equal(t, "CTF", organization(models.RoleModerator, "CTF"))
	assert.Equal(t, "Модератор активностей", organization(models.RoleModerator, ""))
	assert.Equal(t, "Судейская коллегия", organization(models.RoleJury, ""))
	assert.Equal(t, "Участник программы", organization(models.RoleParticipant, ""))
}

func TestSplitName(t *testing.T) {
	last, first := splitName("Иванов Иван Иванович")
	assert.Equal(t, "Иванов", last)
	assert.Equal(t, "Иван", first)

	last, first = splitName("Cher")
	assert.Equal(t, "Cher", last)
	assert.Equal(t, "Cher", first)
}

func TestPersonIndex_FirstKeepsInsertionOrder(t *testing.T) {
	idx := newPersonIndex()
	idx.put("Charlie", 30)
	idx.put("alice", 10)
	idx.put("ALICE", 11)
	idx.put("Bob", 20)
	idx.put("Dave", 40)

	assert.Equal(t, []uint{30, 11, 20}, idx.first(3))
	assert.Equal(t, 4, idx.Len())

	id, ok := idx.lookup(" alice ")
	assert.True(t, ok)
	assert.Equal(t, uint(11), id)

	var missing *personIndex
	_, ok = missing.lookup("alice")
	assert.False(t, ok)
	assert.Empty(t, missing.first(3))
}

func TestValidateMapping(t *testing.T) {
	require.NoError(t, validateMapping(map[int]int{1: 1, 2: 2}, 2))
	require.NoError(t, validateMapping(nil, 0))

	err := validateMapping(map[int]int{1: 1, 7: 3}, 2)
	require.ErrorIs(t, err, ErrInvalidMapping)
	assert.Contains(t, err.Error(), "city 7 refers to country 3")
}

func TestEventSlug(t *testing.T) {
	assert.Equal(t, "cyber-cup-2024", eventSlug("Cyber Cup 2024!"))
	assert.Equal(t, "event", eventSlug("!!!"))
}

func TestReport(t *testing.T) {
	r := Report{Countries: 1, Organizers: 2}.Add(Report{Jury: 3, Participants: 4, Teams: 1})
	assert.Equal(t, 9, r.Users())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 9, decoded["users"])
	assert.Equal(t, 1, decoded["countries"])
	assert.Equal(t, 1, decoded["teams"])
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("tolerant")
	require.NoError(t, err)
	assert.Equal(t, AllowOrphan, p)
	assert.Equal(t, "tolerant", p.String())

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, RequireEvent, p)

	_, err = ParsePolicy("loose")
	assert.Error(t, err)
}
