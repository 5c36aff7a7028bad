package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/app"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/auth"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/database"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/services"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/storage"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// runtimeStack groups the long-lived services assembled during start-up.
type runtimeStack struct {
	store    *storage.ConfigStore
	logs     *storage.LogStore
	analyses *services.AnalysisService
	teams    *services.TeamService
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

func buildRuntimeStack(ctx context.Context, cfg *app.Config, db *gorm.DB) (*runtimeStack, error) {
	root := strings.TrimSpace(cfg.Storage.Root)
	if root == "" {
		return nil, errors.New("storage.root must be configured")
	}

	store := storage.NewConfigStore(root)
	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("initialise config store: %w", err)
	}
	logs := storage.NewLogStore(root)

	analyses, err := services.NewAnalysisService(
		store,
		storage.NewVersionStore(root),
		storage.NewEnvStore(root),
		logs,
	)
	if err != nil {
		return nil, fmt.Errorf("initialise analysis service: %w", err)
	}

	authority, err := auth.NewAuthority(db)
	if err != nil {
		return nil, fmt.Errorf("initialise team authority: %w", err)
	}

	teams, err := services.NewTeamService(authority)
	if err != nil {
		return nil, fmt.Errorf("initialise team service: %w", err)
	}
	if err := teams.Initialize(ctx, analyses); err != nil {
		return nil, fmt.Errorf("initialise team service: %w", err)
	}

	return &runtimeStack{
		store:    store,
		logs:     logs,
		analyses: analyses,
		teams:    teams,
	}, nil
}
