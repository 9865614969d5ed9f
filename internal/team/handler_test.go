package team

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cybershield/internal/models"
	"cybershield/internal/repository"
	"cybershield/internal/service"
	"cybershield/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)

	winner, err := repo.UpsertUser(ctx, "w@example.com", func(u *models.User, _ bool) {
		u.FullName = "Winner"
		u.Role = models.RoleParticipant
	})
	require.NoError(t, err)
	judge, err := repo.UpsertUser(ctx, "j@example.com", func(u *models.User, _ bool) {
		u.FullName = "Judge"
		u.Role = models.RoleJury
	})
	require.NoError(t, err)
	activity, err := repo.UpsertActivity(ctx, nil, "Final", func(*models.Activity, bool) {})
	require.NoError(t, err)
	// Two imports of the same winner produce two rows.
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreateTeam(ctx, &models.Team{Name: "Winner — победители", Score: 100, ActivityID: &activity}, []uint{winner}))
	}

	h := NewTeamHandler(service.NewTeamService(repo.Teams(), repo))
	r := gin.New()
	r.GET("/api/teams", h.ListTeams)
	r.GET("/api/teams/:id", h.GetTeam)
	r.GET("/api/activities/:id/teams", h.ActivityTeams)
	r.GET("/api/users/:id/teams", h.ParticipantTeams)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}
	id := func(v uint) string { return strconv.FormatUint(uint64(v), 10) }

	var teams []models.Team
	rec := get("/api/teams")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	require.Len(t, teams, 2)
	assert.Greater(t, teams[0].ID, teams[1].ID)

	rec = get("/api/activities/" + id(activity) + "/teams")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	assert.Len(t, teams, 2)

	rec = get("/api/teams/" + id(teams[0].ID))
	require.Equal(t, http.StatusOK, rec.Code)
	var one models.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	require.Len(t, one.Participants, 1)
	assert.Equal(t, winner, one.Participants[0].ID)

	rec = get("/api/users/" + id(winner) + "/teams")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, get("/api/users/"+id(judge)+"/teams").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/teams/999").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/activities/999/teams").Code)
	assert.Equal(t, http.StatusBadRequest, get("/api/teams/x").Code)
}
