package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/storage"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/tree"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// AnalysisService manages the lifecycle of uploaded analysis scripts:
// creation, content edits (with version snapshots around every mutation),
// rename, cascade deletion, env blobs, and run logs. It also fronts the
// config store for collaborating services.
type AnalysisService struct {
	store    *storage.ConfigStore
	versions *storage.VersionStore
	env      *storage.EnvStore
	logs     *storage.LogStore
	log      *zap.Logger
}

// CreateAnalysisInput captures an uploaded script.
type CreateAnalysisInput struct {
	Name    string
	Content string
	TeamID  string
}

// NewAnalysisService constructs an AnalysisService over the storage stores.
func NewAnalysisService(store *storage.ConfigStore, versions *storage.VersionStore, env *storage.EnvStore, logs *storage.LogStore) (*AnalysisService, error) {
	if store == nil {
		return nil, errors.New("analysis service: config store is required")
	}
	if versions == nil {
		return nil, errors.New("analysis service: version store is required")
	}
	if env == nil {
		return nil, errors.New("analysis service: env store is required")
	}
	if logs == nil {
		return nil, errors.New("analysis service: log store is required")
	}
	return &AnalysisService{
		store:    store,
		versions: versions,
		env:      env,
		logs:     logs,
		log:      logger.WithModule("analysis"),
	}, nil
}

// GetConfig exposes the current config document.
func (s *AnalysisService) GetConfig() (*models.ConfigDocument, error) {
	return s.store.GetConfig()
}

// UpdateConfig applies a read-modify-write mutation to the config document.
func (s *AnalysisService) UpdateConfig(mutate func(*models.ConfigDocument) error) (*models.ConfigDocument, error) {
	return s.store.UpdateConfig(mutate)
}

// Create registers an uploaded script: writes its first version snapshot and
// the live file, then records it in the config document and the owning
// team's structure root.
func (s *AnalysisService) Create(ctx context.Context, input CreateAnalysisInput) (*models.AnalysisRecord, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("Analysis name is required")
	}

	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		teamID = models.UncategorizedTeamID
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := &models.AnalysisRecord{
		ID:        id,
		Name:      name,
		TeamID:    teamID,
		Enabled:   true,
		Status:    models.StatusStopped,
		Path:      "analyses/" + id,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.versions.Save(id, input.Content); err != nil {
		return nil, err
	}

	_, err := s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses[id] = record
		return tree.AddItemToDocument(doc, teamID, models.NewAnalysisRef(id), "")
	})
	if err != nil {
		// Config registration failed; remove the orphaned files.
		_ = os.RemoveAll(s.store.Layout().AnalysisDir(id))
		return nil, err
	}

	s.log.Info("analysis created",
		zap.String("analysis_id", id),
		zap.String("name", name),
		zap.String("team_id", teamID),
	)
	return record, nil
}

// Get returns one analysis record.
func (s *AnalysisService) Get(ctx context.Context, analysisID string) (*models.AnalysisRecord, error) {
	doc, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}

	record, ok := doc.Analyses[analysisID]
	if !ok {
		return nil, apperrors.NewNotFound("Analysis %s not found", analysisID)
	}
	return record, nil
}

// List returns all analysis records in creation order.
func (s *AnalysisService) List(ctx context.Context) ([]*models.AnalysisRecord, error) {
	doc, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	return doc.SortedAnalyses(), nil
}

// Content returns the live script (version 0) or a historical snapshot.
func (s *AnalysisService) Content(ctx context.Context, analysisID string, version int) (string, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return "", err
	}
	return s.versions.Content(analysisID, version)
}

// UpdateContent saves the edited script as a new version (deduplicated
// against the current one) and touches the record.
func (s *AnalysisService) UpdateContent(ctx context.Context, analysisID, content string) (models.VersionDescriptor, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return models.VersionDescriptor{}, err
	}

	desc, err := s.versions.Save(analysisID, content)
	if err != nil {
		return models.VersionDescriptor{}, err
	}

	_, err = s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		if record, ok := doc.Analyses[analysisID]; ok {
			record.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		return models.VersionDescriptor{}, err
	}
	return desc, nil
}

// Versions lists the analysis's version descriptors, oldest first.
func (s *AnalysisService) Versions(ctx context.Context, analysisID string) ([]models.VersionDescriptor, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	return s.versions.List(analysisID)
}

// Rollback reverts the analysis to a prior version. The overwritten live
// content is preserved as a new forward version and run logs are cleared.
func (s *AnalysisService) Rollback(ctx context.Context, analysisID string, targetVersion int) (models.VersionDescriptor, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return models.VersionDescriptor{}, err
	}

	desc, err := s.versions.Rollback(analysisID, targetVersion)
	if err != nil {
		return models.VersionDescriptor{}, err
	}

	_, err = s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		if record, ok := doc.Analyses[analysisID]; ok {
			record.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		return models.VersionDescriptor{}, err
	}
	return desc, nil
}

// Rename changes the display name. The id never changes.
func (s *AnalysisService) Rename(ctx context.Context, analysisID, newName string) (*models.AnalysisRecord, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil, apperrors.NewValidation("Analysis name is required")
	}

	var renamed *models.AnalysisRecord
	_, err := s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		record, ok := doc.Analyses[analysisID]
		if !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		record.Name = name
		record.UpdatedAt = time.Now().UTC()
		renamed = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// SetEnabled toggles whether the analysis may be scheduled to run.
func (s *AnalysisService) SetEnabled(ctx context.Context, analysisID string, enabled bool) error {
	_, err := s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		record, ok := doc.Analyses[analysisID]
		if !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		record.Enabled = enabled
		record.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}

// UpdateStatus records the run state reported by the process supervisor.
func (s *AnalysisService) UpdateStatus(ctx context.Context, analysisID, status string) error {
	switch status {
	case models.StatusStopped, models.StatusRunning, models.StatusError:
	default:
		return apperrors.NewValidation("Unknown analysis status %q", status)
	}

	_, err := s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		record, ok := doc.Analyses[analysisID]
		if !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		record.Status = status
		record.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}

// Delete removes the analysis record, its tree references in every team,
// and the whole on-disk directory (live file, versions, env, logs).
func (s *AnalysisService) Delete(ctx context.Context, analysisID string) error {
	_, err := s.store.UpdateConfig(func(doc *models.ConfigDocument) error {
		if _, ok := doc.Analyses[analysisID]; !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		delete(doc.Analyses, analysisID)
		for teamID := range doc.TeamStructure {
			tree.RemoveItemFromDocument(doc, teamID, analysisID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.RemoveAll(s.store.Layout().AnalysisDir(analysisID)); err != nil {
		return fmt.Errorf("analysis service: remove analysis directory: %w", err)
	}

	s.log.Info("analysis deleted", zap.String("analysis_id", analysisID))
	return nil
}

// Env returns the parsed environment variables for the analysis.
func (s *AnalysisService) Env(ctx context.Context, analysisID string) (map[string]string, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	return s.env.Read(analysisID)
}

// SetEnv replaces the analysis's environment variables.
func (s *AnalysisService) SetEnv(ctx context.Context, analysisID string, vars map[string]string) error {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return err
	}
	return s.env.Write(analysisID, vars)
}

// EnvBlob returns the raw env file content without interpreting it.
func (s *AnalysisService) EnvBlob(ctx context.Context, analysisID string) (string, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return "", err
	}
	return s.env.Raw(analysisID)
}

// SetEnvBlob stores an opaque env blob as-is.
func (s *AnalysisService) SetEnvBlob(ctx context.Context, analysisID, blob string) error {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return err
	}
	return s.env.WriteRaw(analysisID, blob)
}

// Logs lists the analysis's log file names, oldest first.
func (s *AnalysisService) Logs(ctx context.Context, analysisID string) ([]string, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	return s.logs.List(analysisID)
}

// ReadLog returns the content of one log file.
func (s *AnalysisService) ReadLog(ctx context.Context, analysisID, name string) (string, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return "", err
	}
	return s.logs.Read(analysisID, name)
}

// AppendLog records one line of run output, as reported by the supervisor.
func (s *AnalysisService) AppendLog(ctx context.Context, analysisID, line string) error {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return err
	}
	return s.logs.Append(analysisID, line)
}

// ClearLogs wipes the analysis's accumulated run logs.
func (s *AnalysisService) ClearLogs(ctx context.Context, analysisID string) error {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return err
	}
	return s.logs.Clear(analysisID)
}
