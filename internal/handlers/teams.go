package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/response"
)

type TeamHandler struct {
	svc *services.TeamService
}

type createTeamRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=128"`
	Color string `json:"color" validate:"omitempty,max=32"`
	Order *int   `json:"order" validate:"omitempty,min=0"`
}

type updateTeamRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=128"`
	Color *string `json:"color" validate:"omitempty,max=32"`
	Order *int    `json:"order" validate:"omitempty,min=0"`
}

type reorderTeamsRequest struct {
	TeamIDs []string `json:"teamIds" validate:"required,min=1"`
}

func NewTeamHandler(svc *services.TeamService) (*TeamHandler, error) {
	if svc == nil {
		return nil, errors.NewInitialization("team service is required")
	}
	return &TeamHandler{svc: svc}, nil
}

// GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	ctx := requestContext(c)
	teams, err := h.svc.GetAllTeams(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	type teamWithCount struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Color         string `json:"color"`
		OrderIndex    int    `json:"orderIndex"`
		IsSystem      bool   `json:"isSystem"`
		AnalysisCount int    `json:"analysisCount"`
	}

	out := make([]teamWithCount, 0, len(teams))
	for _, team := range teams {
		out = append(out, teamWithCount{
			ID:            team.ID,
			Name:          team.Name,
			Color:         team.Color,
			OrderIndex:    team.OrderIndex,
			IsSystem:      team.IsSystem,
			AnalysisCount: h.svc.GetAnalysisCountByTeamID(ctx, team.ID),
		})
	}
	response.Success(c, http.StatusOK, out)
}

// GET /api/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.svc.GetTeam(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var body createTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.svc.CreateTeam(requestContext(c), services.CreateTeamInput{
		Name:  strings.TrimSpace(body.Name),
		Color: body.Color,
		Order: body.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, team)
}

// PATCH /api/teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	var body updateTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.svc.UpdateTeam(requestContext(c), c.Param("id"), services.UpdateTeamInput{
		Name:  body.Name,
		Color: body.Color,
		Order: body.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	result, err := h.svc.DeleteTeam(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PUT /api/teams/order
func (h *TeamHandler) Reorder(c *gin.Context) {
	var body reorderTeamsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	teams, err := h.svc.ReorderTeams(requestContext(c), body.TeamIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, teams)
}

// GET /api/teams/:id/analyses
func (h *TeamHandler) Analyses(c *gin.Context) {
	records, err := h.svc.GetAnalysesByTeam(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// GET /api/teams/:id/structure
func (h *TeamHandler) Structure(c *gin.Context) {
	items, err := h.svc.Structure(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}
