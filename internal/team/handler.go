package team

import (
	"errors"
	"net/http"
	"strconv"

	"cybershield/internal/repository"
	"cybershield/internal/service"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	service service.TeamService
}

func NewTeamHandler(service service.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	team, err := h.service.GetTeamByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Team not found")
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) ActivityTeams(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	teams, err := h.service.ByActivity(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Activity not found")
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) ParticipantTeams(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	teams, err := h.service.ByParticipant(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Participant not found")
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) fail(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
