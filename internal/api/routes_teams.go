package api

import (
	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/handlers"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
)

func registerTeamRoutes(api *gin.RouterGroup, svc *services.TeamService) error {
	teamHandler, err := handlers.NewTeamHandler(svc)
	if err != nil {
		return err
	}
	folderHandler, err := handlers.NewFolderHandler(svc)
	if err != nil {
		return err
	}

	teams := api.Group("/teams")
	{
		teams.GET("", teamHandler.List)
		teams.POST("", teamHandler.Create)
		teams.PUT("/order", teamHandler.Reorder)
		teams.GET("/:id", teamHandler.Get)
		teams.PATCH("/:id", teamHandler.Update)
		teams.DELETE("/:id", teamHandler.Delete)
		teams.GET("/:id/analyses", teamHandler.Analyses)
		teams.GET("/:id/structure", teamHandler.Structure)

		teams.POST("/:id/folders", folderHandler.Create)
		teams.PATCH("/:id/folders/:folderId", folderHandler.Update)
		teams.DELETE("/:id/folders/:folderId", folderHandler.Delete)
		teams.PUT("/:id/items/:itemId/move", folderHandler.MoveItem)
	}

	api.PUT("/analyses/:id/team", folderHandler.MoveAnalysis)

	return nil
}
