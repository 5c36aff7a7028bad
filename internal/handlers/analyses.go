package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/response"
)

type AnalysisHandler struct {
	svc *services.AnalysisService
}

type createAnalysisRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=256"`
	Content string `json:"content"`
	TeamID  string `json:"teamId" validate:"omitempty"`
}

type updateContentRequest struct {
	Content string `json:"content"`
}

type renameAnalysisRequest struct {
	Name string `json:"name" validate:"required,min=1,max=256"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type setEnvRequest struct {
	Env map[string]string `json:"env" validate:"required"`
}

func NewAnalysisHandler(svc *services.AnalysisService) (*AnalysisHandler, error) {
	if svc == nil {
		return nil, errors.NewInitialization("analysis service is required")
	}
	return &AnalysisHandler{svc: svc}, nil
}

// GET /api/analyses
func (h *AnalysisHandler) List(c *gin.Context) {
	records, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// GET /api/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// POST /api/analyses
func (h *AnalysisHandler) Create(c *gin.Context) {
	var body createAnalysisRequest
	if !bindAndValidate(c, &body) {
		return
	}

	record, err := h.svc.Create(requestContext(c), services.CreateAnalysisInput{
		Name:    body.Name,
		Content: body.Content,
		TeamID:  body.TeamID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// GET /api/analyses/:id/content?version=N
func (h *AnalysisHandler) Content(c *gin.Context) {
	version := parseIntQuery(c, "version", 0)
	content, err := h.svc.Content(requestContext(c), c.Param("id"), version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"content": content, "version": version})
}

// PUT /api/analyses/:id/content
func (h *AnalysisHandler) UpdateContent(c *gin.Context) {
	var body updateContentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	desc, err := h.svc.UpdateContent(requestContext(c), c.Param("id"), body.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, desc)
}

// PATCH /api/analyses/:id/name
func (h *AnalysisHandler) Rename(c *gin.Context) {
	var body renameAnalysisRequest
	if !bindAndValidate(c, &body) {
		return
	}

	record, err := h.svc.Rename(requestContext(c), c.Param("id"), body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// PATCH /api/analyses/:id/enabled
func (h *AnalysisHandler) SetEnabled(c *gin.Context) {
	var body setEnabledRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetEnabled(requestContext(c), c.Param("id"), *body.Enabled); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enabled": *body.Enabled})
}

// DELETE /api/analyses/:id
func (h *AnalysisHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/analyses/:id/env
func (h *AnalysisHandler) Env(c *gin.Context) {
	vars, err := h.svc.Env(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vars)
}

// PUT /api/analyses/:id/env
func (h *AnalysisHandler) SetEnv(c *gin.Context) {
	var body setEnvRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetEnv(requestContext(c), c.Param("id"), body.Env); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// GET /api/analyses/:id/logs
func (h *AnalysisHandler) Logs(c *gin.Context) {
	names, err := h.svc.Logs(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, names)
}

// GET /api/analyses/:id/logs/:name
func (h *AnalysisHandler) ReadLog(c *gin.Context) {
	content, err := h.svc.ReadLog(requestContext(c), c.Param("id"), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"name": c.Param("name"), "content": content})
}

// DELETE /api/analyses/:id/logs
func (h *AnalysisHandler) ClearLogs(c *gin.Context) {
	if err := h.svc.ClearLogs(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}
