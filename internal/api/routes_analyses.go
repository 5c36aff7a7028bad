package api

import (
	"github.com/gin-gonic/gin"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/handlers"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
)

func registerAnalysisRoutes(api *gin.RouterGroup, svc *services.AnalysisService) error {
	handler, err := handlers.NewAnalysisHandler(svc)
	if err != nil {
		return err
	}
	versionHandler, err := handlers.NewVersionHandler(svc)
	if err != nil {
		return err
	}

	analyses := api.Group("/analyses")
	{
		analyses.GET("", handler.List)
		analyses.POST("", handler.Create)
		analyses.GET("/:id", handler.Get)
		analyses.DELETE("/:id", handler.Delete)
		analyses.PATCH("/:id/name", handler.Rename)
		analyses.PATCH("/:id/enabled", handler.SetEnabled)

		analyses.GET("/:id/content", handler.Content)
		analyses.PUT("/:id/content", handler.UpdateContent)

		analyses.GET("/:id/versions", versionHandler.List)
		analyses.POST("/:id/rollback", versionHandler.Rollback)

		analyses.GET("/:id/env", handler.Env)
		analyses.PUT("/:id/env", handler.SetEnv)

		analyses.GET("/:id/logs", handler.Logs)
		analyses.GET("/:id/logs/:name", handler.ReadLog)
		analyses.DELETE("/:id/logs", handler.ClearLogs)
	}

	return nil
}
