package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cybershield/internal/admin"
	"cybershield/internal/conference"
	"cybershield/internal/importer"
	"cybershield/internal/metrics"
	"cybershield/internal/repository"
	"cybershield/internal/service"
	"cybershield/internal/team"
	"cybershield/internal/testutil"
	"cybershield/internal/workbook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repository.NewRepository(testutil.NewDB(t))
	reg := prometheus.NewRegistry()
	root := t.TempDir()
	im := importer.New(repo, workbook.NewDirSource(root), importer.DefaultOptions(), log)
	imports := service.NewImportService(repo, im, metrics.New(reg), log)
	dashboard := service.NewDashboardService(repo)

	return newRouter(handlers{
		admin:      admin.NewAdminHandler(repo, imports, root, t.TempDir(), "secret"),
		conference: conference.NewHandler(repo, dashboard, service.NewScoreService(repo)),
		team:       team.NewTeamHandler(service.NewTeamService(repo.Teams(), repo)),
	}, "secret", reg)
}

func TestRoutes(t *testing.T) {
	r := testRouter(t)
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/events", http.StatusOK},
		{http.MethodGet, "/api/activities", http.StatusOK},
		{http.MethodGet, "/api/users", http.StatusOK},
		{http.MethodGet, "/api/users/role/participant", http.StatusOK},
		{http.MethodGet, "/api/dashboard", http.StatusOK},
		{http.MethodGet, "/api/teams", http.StatusOK},
		{http.MethodGet, "/api/activities/1/teams", http.StatusNotFound},
		{http.MethodPost, "/api/events", http.StatusUnauthorized},
		{http.MethodPost, "/api/scores", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/admin/imports", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/imports", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/admin/workbooks", http.StatusUnauthorized},
		{http.MethodPost, "/import", http.StatusSeeOther},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMetricsExposeImportRuns(t *testing.T) {
	r := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), `cybershield_import_runs_total{result="failure",trigger="form"} 1`), rec.Body.String())
}
