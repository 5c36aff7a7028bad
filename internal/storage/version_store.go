package storage

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/metrics"
)

// VersionStore manages per-analysis version history: the versions/ directory
// with immutable v<N>.js snapshots, the metadata.json index, and the live
// index.js. Version numbers start at 1 and are never reused; rollback moves
// forward, it does not rewind the allocator.
//
// Save ordering matters: the snapshot file is written first, metadata is
// committed only after the snapshot is confirmed on disk, and the live file
// follows. A crash mid-save loses the attempted version but never corrupts
// history.
type VersionStore struct {
	layout Layout
	now    func() time.Time
	log    *zap.Logger
}

// NewVersionStore builds a version store rooted at the storage directory.
func NewVersionStore(root string) *VersionStore {
	return &VersionStore{
		layout: Layout{Root: root},
		now:    time.Now,
		log:    logger.WithModule("version-store"),
	}
}

// WithNow overrides the clock, for tests.
func (s *VersionStore) WithNow(now func() time.Time) *VersionStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Save snapshots content as a new version unless it is byte-identical to the
// current version's snapshot, in which case the existing descriptor is
// returned and nothing is written. Dedup compares against the current
// snapshot only, not the whole history.
func (s *VersionStore) Save(analysisID, content string) (models.VersionDescriptor, error) {
	meta, err := s.loadOrInitMetadata(analysisID)
	if err != nil {
		metrics.VersionSaves.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	if current, ok := meta.Current(); ok {
		same, err := s.matchesSnapshot(analysisID, current.Version, content)
		if err != nil {
			metrics.VersionSaves.WithLabelValues("error").Inc()
			return models.VersionDescriptor{}, err
		}
		if same {
			metrics.VersionSaves.WithLabelValues("deduplicated").Inc()
			s.log.Debug("save skipped, content unchanged",
				zap.String("analysis_id", analysisID),
				zap.Int("version", current.Version),
			)
			return current, nil
		}
	}

	desc, err := s.appendVersion(analysisID, meta, content)
	if err != nil {
		metrics.VersionSaves.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	if err := s.writeMetadata(analysisID, meta); err != nil {
		metrics.VersionSaves.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	if err := writeFileAtomic(s.layout.LiveFile(analysisID), []byte(content)); err != nil {
		metrics.VersionSaves.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, fmt.Errorf("version store: write live content: %w", err)
	}

	metrics.VersionSaves.WithLabelValues("created").Inc()
	s.log.Info("version saved",
		zap.String("analysis_id", analysisID),
		zap.Int("version", desc.Version),
		zap.Int("size", desc.Size),
	)
	return desc, nil
}

// List returns the version descriptors ordered by version ascending.
func (s *VersionStore) List(analysisID string) ([]models.VersionDescriptor, error) {
	meta, err := s.loadOrInitMetadata(analysisID)
	if err != nil {
		return nil, err
	}
	// Descriptors are appended in allocation order, which is ascending.
	return meta.Versions, nil
}

// Metadata returns the raw metadata document for an analysis.
func (s *VersionStore) Metadata(analysisID string) (*models.VersionMetadata, error) {
	return s.loadOrInitMetadata(analysisID)
}

// Content returns a version's snapshot, or the live index.js when version is
// zero or negative.
func (s *VersionStore) Content(analysisID string, version int) (string, error) {
	path := s.layout.LiveFile(analysisID)
	if version > 0 {
		path = s.layout.SnapshotFile(analysisID, version)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if version > 0 {
			return "", apperrors.NewVersionNotFound("Version %d not found for analysis %s", version, analysisID)
		}
		return "", apperrors.NewVersionNotFound("No content found for analysis %s", analysisID)
	}
	if err != nil {
		return "", fmt.Errorf("version store: read content: %w", err)
	}
	return string(data), nil
}

// Rollback reverts the live content to targetVersion. The pre-rollback live
// content, when it differs from the target, is first snapshotted as a new
// forward version so the most recent edit is never lost. Accumulated run
// logs are cleared; rollback starts a fresh log history.
func (s *VersionStore) Rollback(analysisID string, targetVersion int) (models.VersionDescriptor, error) {
	meta, err := s.loadOrInitMetadata(analysisID)
	if err != nil {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	target, ok := meta.Find(targetVersion)
	if !ok {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, apperrors.NewVersionNotFound("Version %d not found for analysis %s", targetVersion, analysisID)
	}

	targetContent, err := os.ReadFile(s.layout.SnapshotFile(analysisID, targetVersion))
	if errors.Is(err, os.ErrNotExist) {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, apperrors.NewVersionNotFound("Version %d not found for analysis %s", targetVersion, analysisID)
	}
	if err != nil {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, fmt.Errorf("version store: read target snapshot: %w", err)
	}

	liveContent, err := os.ReadFile(s.layout.LiveFile(analysisID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, fmt.Errorf("version store: read live content: %w", err)
	}

	if err == nil && string(liveContent) != string(targetContent) {
		if _, err := s.appendVersion(analysisID, meta, string(liveContent)); err != nil {
			metrics.Rollbacks.WithLabelValues("error").Inc()
			return models.VersionDescriptor{}, err
		}
	}

	meta.CurrentVersion = target.Version
	if err := s.writeMetadata(analysisID, meta); err != nil {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	if err := writeFileAtomic(s.layout.LiveFile(analysisID), targetContent); err != nil {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, fmt.Errorf("version store: restore live content: %w", err)
	}

	if err := clearLogs(s.layout.LogsDir(analysisID)); err != nil {
		metrics.Rollbacks.WithLabelValues("error").Inc()
		return models.VersionDescriptor{}, err
	}

	metrics.Rollbacks.WithLabelValues("success").Inc()
	s.log.Info("rolled back",
		zap.String("analysis_id", analysisID),
		zap.Int("target_version", target.Version),
	)
	return target, nil
}

// appendVersion writes the snapshot for the next version number and updates
// meta in memory. The caller persists metadata afterwards; the snapshot must
// already be on disk by the time metadata commits.
func (s *VersionStore) appendVersion(analysisID string, meta *models.VersionMetadata, content string) (models.VersionDescriptor, error) {
	if meta.NextVersionNumber < 1 {
		meta.NextVersionNumber = 1
	}
	number := meta.NextVersionNumber

	if err := writeFileAtomic(s.layout.SnapshotFile(analysisID, number), []byte(content)); err != nil {
		return models.VersionDescriptor{}, fmt.Errorf("version store: write snapshot v%d: %w", number, err)
	}

	desc := models.VersionDescriptor{
		Version:   number,
		Timestamp: s.now().UTC(),
		Size:      len(content),
	}
	meta.Versions = append(meta.Versions, desc)
	meta.CurrentVersion = number
	meta.NextVersionNumber = number + 1
	return desc, nil
}

// matchesSnapshot compares content against an existing snapshot by size
// first, then by SHA-256.
func (s *VersionStore) matchesSnapshot(analysisID string, version int, content string) (bool, error) {
	snapshot, err := os.ReadFile(s.layout.SnapshotFile(analysisID, version))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("version store: read snapshot v%d: %w", version, err)
	}

	if len(snapshot) != len(content) {
		return false, nil
	}
	return sha256.Sum256(snapshot) == sha256.Sum256([]byte(content)), nil
}

func (s *VersionStore) loadOrInitMetadata(analysisID string) (*models.VersionMetadata, error) {
	data, err := os.ReadFile(s.layout.MetadataFile(analysisID))
	if errors.Is(err, os.ErrNotExist) {
		return models.NewVersionMetadata(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("version store: read metadata: %w", err)
	}

	meta := models.NewVersionMetadata()
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("version store: parse metadata: %w", err)
	}
	return meta, nil
}

func (s *VersionStore) writeMetadata(analysisID string, meta *models.VersionMetadata) error {
	if err := writeJSONAtomic(s.layout.MetadataFile(analysisID), meta); err != nil {
		return fmt.Errorf("version store: persist metadata: %w", err)
	}
	return nil
}
