package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/response"
)

type VersionHandler struct {
	svc *services.AnalysisService
}

type rollbackRequest struct {
	Version int `json:"version" validate:"required,min=1"`
}

func NewVersionHandler(svc *services.AnalysisService) (*VersionHandler, error) {
	if svc == nil {
		return nil, errors.NewInitialization("analysis service is required")
	}
	return &VersionHandler{svc: svc}, nil
}

// GET /api/analyses/:id/versions
func (h *VersionHandler) List(c *gin.Context) {
	versions, err := h.svc.Versions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, versions)
}

// POST /api/analyses/:id/rollback
func (h *VersionHandler) Rollback(c *gin.Context) {
	var body rollbackRequest
	if !bindAndValidate(c, &body) {
		return
	}

	desc, err := h.svc.Rollback(requestContext(c), c.Param("id"), body.Version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, desc)
}
