package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/metrics"
)

// ConfigStore owns the analyses-config.json document: analysis metadata and
// the per-team folder trees. Every mutation is a full read-modify-write of
// the document, serialized by an in-process mutex and persisted atomically.
type ConfigStore struct {
	layout Layout
	mu     sync.Mutex
	log    *zap.Logger
}

// NewConfigStore builds a store rooted at the given storage directory.
func NewConfigStore(root string) *ConfigStore {
	return &ConfigStore{
		layout: Layout{Root: root},
		log:    logger.WithModule("config-store"),
	}
}

// Layout exposes the on-disk layout shared with the sibling stores.
func (s *ConfigStore) Layout() Layout {
	return s.layout
}

// Initialize creates the storage directories and writes an empty config
// document when none exists yet. Safe to call repeatedly.
func (s *ConfigStore) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dir := range []string{s.layout.ConfigDir(), s.layout.AnalysesDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return fmt.Errorf("config store: create %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(s.layout.ConfigFile()); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config store: stat config file: %w", err)
	}

	if err := s.write(models.NewConfigDocument()); err != nil {
		return err
	}

	s.log.Info("initialized empty analyses config", zap.String("path", s.layout.ConfigFile()))
	return nil
}

// GetConfig loads the current document. Fails with a not-found error when
// Initialize has not run yet.
func (s *ConfigStore) GetConfig() (*models.ConfigDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// UpdateConfig applies mutate to the current document and persists the whole
// document back. The mutex makes chained service calls behave as if
// serialized per document; an error from mutate leaves the file untouched.
func (s *ConfigStore) UpdateConfig(mutate func(*models.ConfigDocument) error) (*models.ConfigDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := mutate(doc); err != nil {
		return nil, err
	}

	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ConfigStore) load() (*models.ConfigDocument, error) {
	data, err := os.ReadFile(s.layout.ConfigFile())
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewNotFound("Analyses config not found; storage is not initialized")
	}
	if err != nil {
		return nil, fmt.Errorf("config store: read config: %w", err)
	}

	doc := models.NewConfigDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("config store: parse config: %w", err)
	}
	if doc.Analyses == nil {
		doc.Analyses = map[string]*models.AnalysisRecord{}
	}
	if doc.TeamStructure == nil {
		doc.TeamStructure = map[string]*models.TeamStructure{}
	}
	return doc, nil
}

func (s *ConfigStore) write(doc *models.ConfigDocument) error {
	if doc.Version == "" {
		doc.Version = models.ConfigDocumentVersion
	}
	if err := writeJSONAtomic(s.layout.ConfigFile(), doc); err != nil {
		return fmt.Errorf("config store: persist config: %w", err)
	}
	metrics.ConfigWrites.Inc()
	return nil
}
