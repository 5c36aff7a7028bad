package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/tree"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/response"
)

type FolderHandler struct {
	svc *services.TeamService
}

type createFolderRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=128"`
	ParentID string `json:"parentId" validate:"omitempty"`
	Expanded bool   `json:"expanded"`
}

type updateFolderRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=128"`
	Expanded *bool   `json:"expanded"`
}

type moveItemRequest struct {
	TargetFolderID string `json:"targetFolderId"`
	Position       int    `json:"position" validate:"min=0"`
}

type moveAnalysisRequest struct {
	TargetTeamID string `json:"targetTeamId" validate:"required"`
}

func NewFolderHandler(svc *services.TeamService) (*FolderHandler, error) {
	if svc == nil {
		return nil, errors.NewInitialization("team service is required")
	}
	return &FolderHandler{svc: svc}, nil
}

// POST /api/teams/:id/folders
func (h *FolderHandler) Create(c *gin.Context) {
	var body createFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.CreateFolder(requestContext(c), c.Param("id"), tree.CreateFolderInput{
		Name:     body.Name,
		ParentID: body.ParentID,
		Expanded: body.Expanded,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, folder)
}

// PATCH /api/teams/:id/folders/:folderId
func (h *FolderHandler) Update(c *gin.Context) {
	var body updateFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.UpdateFolder(requestContext(c), c.Param("id"), c.Param("folderId"), tree.UpdateFolderInput{
		Name:     body.Name,
		Expanded: body.Expanded,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folder)
}

// DELETE /api/teams/:id/folders/:folderId
func (h *FolderHandler) Delete(c *gin.Context) {
	result, err := h.svc.DeleteFolder(requestContext(c), c.Param("id"), c.Param("folderId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PUT /api/teams/:id/items/:itemId/move
func (h *FolderHandler) MoveItem(c *gin.Context) {
	var body moveItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	// An absent targetFolderId moves the item back to the team root.
	result, err := h.svc.MoveItem(requestContext(c), c.Param("id"), c.Param("itemId"), body.TargetFolderID, body.Position)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PUT /api/analyses/:id/team
func (h *FolderHandler) MoveAnalysis(c *gin.Context) {
	var body moveAnalysisRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.svc.MoveAnalysisToTeam(requestContext(c), c.Param("id"), body.TargetTeamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
