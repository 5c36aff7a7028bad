// Package api assembles the Gin engine, wiring middleware and routes over
// the analysis and team services.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/app"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/handlers"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/middleware"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(analyses *services.AnalysisService, teams *services.TeamService, cfg *app.Config) (*gin.Engine, error) {
	if analyses == nil {
		return nil, fmt.Errorf("analysis service must be provided")
	}
	if teams == nil {
		return nil, fmt.Errorf("team service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")

	if err := registerAnalysisRoutes(api, analyses); err != nil {
		return nil, err
	}
	if err := registerTeamRoutes(api, teams); err != nil {
		return nil, err
	}

	return r, nil
}
