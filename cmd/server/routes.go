package main

import (
	"net/http"

	"cybershield/internal/admin"
	"cybershield/internal/conference"
	"cybershield/internal/metrics"
	"cybershield/internal/pkg"
	"cybershield/internal/team"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type handlers struct {
	admin      *admin.AdminHandler
	conference *conference.Handler
	team       *team.TeamHandler
}

func newRouter(h handlers, jwtSecret string, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	router.POST("/import", h.admin.ImportForm)

	public := router.Group("/api")
	{
		public.GET("/events", h.conference.ListEvents)
		public.GET("/events/:id", h.conference.GetEvent)
		public.GET("/activities", h.conference.ListActivities)
		public.GET("/activities/:id", h.conference.GetActivity)
		public.GET("/activities/:id/teams", h.team.ActivityTeams)
		public.GET("/activities/:id/scores", h.conference.ActivityScores)
		public.GET("/users", h.conference.ListUsers)
		public.GET("/users/role/:role", h.conference.UsersByRole)
		public.GET("/users/:id/teams", h.team.ParticipantTeams)
		public.GET("/dashboard", h.conference.Dashboard)
		public.GET("/teams", h.team.ListTeams)
		public.GET("/teams/:id", h.team.GetTeam)
		public.GET("/scores/average", h.conference.AverageScore)

		public.POST("/v1/admin/login", h.admin.AdminLogin)
	}

	editor := router.Group("/api")
	editor.Use(pkg.JWTAuthMiddleware(jwtSecret))
	{
		editor.POST("/events", h.conference.SaveEvent)
		editor.POST("/scores", h.conference.SubmitScore)
	}

	adminRoutes := router.Group("/api/v1/admin")
	adminRoutes.Use(pkg.JWTAuthMiddleware(jwtSecret))
	{
		adminRoutes.POST("/change-password", h.admin.ChangePassword)
		adminRoutes.POST("/imports", h.admin.RunImport)
		adminRoutes.GET("/imports", h.admin.ListImports)
		adminRoutes.GET("/imports/:id", h.admin.GetImport)
		adminRoutes.POST("/workbooks", h.admin.UploadWorkbook)
	}

	return router
}
