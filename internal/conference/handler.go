// Package conference serves the read API over imported conference data plus event editing
// and jury scoring for admins.
package conference

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cybershield/internal/models"
	"cybershield/internal/repository"
	"cybershield/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

type Handler struct {
	repo      *repository.Repository
	dashboard service.DashboardService
	scores    service.ScoreService
}

func NewHandler(repo *repository.Repository, dashboard service.DashboardService, scores service.ScoreService) *Handler {
	return &Handler{repo: repo, dashboard: dashboard, scores: scores}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, key string) (uint, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false, errors.New("invalid " + key)
	}
	return uint(id), true, nil
}

func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, service.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.dashboard.Events(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent accepts a numeric id or a slug.
func (h *Handler) GetEvent(c *gin.Context) {
	var (
		event *models.Event
		err   error
	)
	if id, ok := parseID(c, "id"); ok {
		event, err = h.repo.GetEventByID(c.Request.Context(), id)
	} else {
		event, err = h.repo.GetEventBySlug(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondError(c, err, "Event not found")
		return
	}
	c.JSON(http.StatusOK, event)
}

type eventInput struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	StartDate   *models.Date `json:"startDate"`
	EndDate     *models.Date `json:"endDate"`
	VenueName   string       `json:"venueName"`
	ImagePath   string       `json:"imagePath"`
	CityID      *uint        `json:"cityId"`
}

// SaveEvent creates an event, or updates it when the body carries an id.
func (h *Handler) SaveEvent(c *gin.Context) {
	var input eventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(input.StartDate.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate is before startDate"})
		return
	}

	event := &models.Event{}
	status := http.StatusCreated
	if input.ID != 0 {
		existing, err := h.repo.GetEventByID(c.Request.Context(), input.ID)
		if err != nil {
			respondError(c, err, "Event not found")
			return
		}
		event = existing
		status = http.StatusOK
	}

	event.Title = title
	event.TitleKey = repository.Key(title)
	event.Slug = slug.Make(title)
	event.Description = input.Description
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	event.VenueName = input.VenueName
	event.ImagePath = input.ImagePath
	event.CityID = input.CityID

	if err := h.repo.SaveEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Event could not be saved: " + err.Error()})
		return
	}
	c.JSON(status, event)
}

func (h *Handler) ListActivities(c *gin.Context) {
	eventID, ok, err := queryID(c, "event")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var filter *uint
	if ok {
		filter = &eventID
	}
	activities, err := h.repo.ListActivities(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *Handler) GetActivity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	activity, err := h.repo.GetActivityByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Activity not found")
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.repo.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) UsersByRole(c *gin.Context) {
	role, ok := models.ParseRole(strings.ToUpper(c.Param("role")))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}
	users, err := h.dashboard.UsersByRole(c.Request.Context(), role)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.dashboard.Summary(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	upcoming, err := h.dashboard.UpcomingActivities(ctx, 5)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  summary,
		"upcoming": upcoming,
	})
}

func (h *Handler) SubmitScore(c *gin.Context) {
	var input service.ScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	score, err := h.scores.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusCreated, score)
}

func (h *Handler) ActivityScores(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	scores, err := h.scores.ByActivity(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, scores)
}

// AverageScore answers ?activity=&participant= with the rounded mean as a string.
func (h *Handler) AverageScore(c *gin.Context) {
	activityID, okA, errA := queryID(c, "activity")
	participantID, okP, errP := queryID(c, "participant")
	if errA != nil || errP != nil || !okA || !okP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity and participant are required"})
		return
	}
	avg, err := h.scores.Average(c.Request.Context(), activityID, participantID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activityId":    activityID,
		"participantId": participantID,
		"average":       avg.StringFixed(2),
	})
}
